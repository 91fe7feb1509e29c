package core

import (
	"github.com/huangsam/benchtable/core/loader"
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
)

// MergeTasks aligns all run-sets on the union of their tasks. A task that
// only some run-sets contain is inserted right after its predecessor in the
// run-set where it was first seen: [A,C] + [A,B] gives [A,B,C]. Duplicates
// within one run-set are skipped with a warning and the first one is kept.
func MergeTasks(runSets []*loader.RunSetResult) []schema.TaskID {
	log := contract.Logger().Sugar()

	var tasks []schema.TaskID
	known := make(map[schema.TaskID]struct{})
	for _, rs := range runSets {
		index := -1
		current := make(map[schema.TaskID]struct{})
		for _, task := range rs.Tasks() {
			if _, dup := current[task]; dup {
				log.Warnf("Task '%s' is present twice, skipping it.", task.Name)
				continue
			}
			current[task] = struct{}{}

			if _, ok := known[task]; ok {
				index = indexOf(tasks, task)
				continue
			}
			tasks = insertAt(tasks, index+1, task)
			known[task] = struct{}{}
			index++
		}
	}

	mergeTaskLists(runSets, tasks)
	return tasks
}

// FindCommonTasks aligns all run-sets on the tasks every one of them
// contains, in the order of the first run-set. An empty intersection
// empties every run-set and yields no tasks.
func FindCommonTasks(runSets []*loader.RunSetResult) []schema.TaskID {
	if len(runSets) == 0 {
		return nil
	}
	first := runSets[0].Tasks()

	common := make(map[schema.TaskID]struct{}, len(first))
	for _, task := range first {
		common[task] = struct{}{}
	}
	for _, rs := range runSets[1:] {
		present := make(map[schema.TaskID]struct{})
		for _, task := range rs.Tasks() {
			present[task] = struct{}{}
		}
		for task := range common {
			if _, ok := present[task]; !ok {
				delete(common, task)
			}
		}
	}

	if len(common) == 0 {
		contract.Logger().Warn("No tasks are present in all benchmark results.")
		mergeTaskLists(runSets, nil)
		return nil
	}

	var tasks []schema.TaskID
	seen := make(map[schema.TaskID]struct{}, len(common))
	for _, task := range first {
		if _, ok := common[task]; !ok {
			continue
		}
		// A run-set may list a task twice; it still appears once in the list.
		if _, dup := seen[task]; dup {
			continue
		}
		seen[task] = struct{}{}
		tasks = append(tasks, task)
	}
	mergeTaskLists(runSets, tasks)
	return tasks
}

// mergeTaskLists rewrites every run-set to contain exactly tasks, in order.
// Tasks a run-set lacks are filled with placeholders. When a run-set holds
// several results for one task, the lookup is built from the reversed
// results, so the first result in the original order is used.
func mergeTaskLists(runSets []*loader.RunSetResult, tasks []schema.TaskID) {
	log := contract.Logger().Sugar()
	for _, rs := range runSets {
		lookup := make(map[schema.TaskID]*schema.RunResult, len(rs.Results))
		for i := len(rs.Results) - 1; i >= 0; i-- {
			lookup[rs.Results[i].TaskID] = rs.Results[i]
		}

		results := make([]*schema.RunResult, 0, len(tasks))
		for _, task := range tasks {
			result, ok := lookup[task]
			if !ok {
				log.Infof("    no result for task '%s'", task.Name)
				result = schema.NewPlaceholderResult(task, rs.Columns)
			}
			results = append(results, result)
		}
		rs.Results = results
	}
}

func indexOf(tasks []schema.TaskID, task schema.TaskID) int {
	for i, t := range tasks {
		if t == task {
			return i
		}
	}
	return -1
}

func insertAt(tasks []schema.TaskID, i int, task schema.TaskID) []schema.TaskID {
	tasks = append(tasks, schema.TaskID{})
	copy(tasks[i+1:], tasks[i:])
	tasks[i] = task
	return tasks
}
