package schema

// Attribute is a single name/value pair of an Element.
type Attribute struct {
	Name  string
	Value string
}

// Element is an immutable node of a parsed result or table-definition document.
// All accessors return copies or read-only views; the With* methods return
// modified copies and leave the receiver untouched.
type Element struct {
	name     string
	attrs    []Attribute
	text     string
	children []*Element
}

// NewElement creates an element with the given attributes, text and children.
func NewElement(name string, attrs []Attribute, text string, children ...*Element) *Element {
	e := &Element{name: name, text: text}
	if len(attrs) > 0 {
		e.attrs = append([]Attribute(nil), attrs...)
	}
	if len(children) > 0 {
		e.children = append([]*Element(nil), children...)
	}
	return e
}

// Name returns the tag name.
func (e *Element) Name() string {
	return e.name
}

// Text returns the character data directly inside the element.
func (e *Element) Text() string {
	return e.text
}

// Attr returns the value of the named attribute and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name == key {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the value of the named attribute or def when it is absent.
func (e *Element) AttrOr(key, def string) string {
	if v, ok := e.Attr(key); ok {
		return v
	}
	return def
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(key string) bool {
	_, ok := e.Attr(key)
	return ok
}

// Attrs returns the attributes in document order.
func (e *Element) Attrs() []Attribute {
	return append([]Attribute(nil), e.attrs...)
}

// Children returns all direct children with the given tag name, in document order.
func (e *Element) Children(name string) []*Element {
	var out []*Element
	for _, c := range e.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first direct child with the given tag name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// AllChildren returns every direct child in document order.
func (e *Element) AllChildren() []*Element {
	return append([]*Element(nil), e.children...)
}

// ColumnValue returns the value attribute of the first <column> child whose
// title matches, and whether such a column exists.
func (e *Element) ColumnValue(title string) (string, bool) {
	for _, c := range e.Children("column") {
		if t, _ := c.Attr("title"); t == title {
			return c.Attr("value")
		}
	}
	return "", false
}

// WithAttr returns a copy of the element with the attribute set.
func (e *Element) WithAttr(key, value string) *Element {
	clone := *e
	clone.attrs = make([]Attribute, 0, len(e.attrs)+1)
	replaced := false
	for _, a := range e.attrs {
		if a.Name == key {
			a.Value = value
			replaced = true
		}
		clone.attrs = append(clone.attrs, a)
	}
	if !replaced {
		clone.attrs = append(clone.attrs, Attribute{Name: key, Value: value})
	}
	return &clone
}

// WithChildren returns a copy of the element with its children replaced.
func (e *Element) WithChildren(children []*Element) *Element {
	clone := *e
	clone.children = append([]*Element(nil), children...)
	return &clone
}

// MapChildren returns a copy of the element where every direct child whose
// tag is in names has been replaced by fn(child).
func (e *Element) MapChildren(fn func(*Element) *Element, names ...string) *Element {
	children := make([]*Element, len(e.children))
	for i, c := range e.children {
		children[i] = c
		for _, n := range names {
			if c.name == n {
				children[i] = fn(c)
				break
			}
		}
	}
	return e.WithChildren(children)
}
