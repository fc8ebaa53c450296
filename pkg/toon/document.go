package toon

// Document wraps a value tree behind the path-addressed operations the
// rest of the system speaks. The zero Document is not usable; construct
// one with NewDocument.
type Document struct {
	root *Value
}

// NewDocument wraps root. A nil root becomes an empty object, matching
// what Decode returns for empty input.
func NewDocument(root *Value) *Document {
	if root == nil {
		root = NewObject()
	}
	return &Document{root: root}
}

// Parse decodes input and wraps the result.
func Parse(input string) (*Document, error) {
	root, err := Decode(input)
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// ParseJSON builds a document from JSON text.
func ParseJSON(input string) (*Document, error) {
	root, err := FromJSON(input)
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// Root returns the underlying value tree, shared, not copied.
func (d *Document) Root() *Value { return d.root }

// Replace swaps the whole tree.
func (d *Document) Replace(root *Value) {
	if root == nil {
		root = NewObject()
	}
	d.root = root
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	return &Document{root: d.root.Clone()}
}

// Get resolves path inside the document.
func (d *Document) Get(path string) (*Value, error) {
	return GetPath(d.root, path)
}

// Set assigns the value at path. The bare root path "$" replaces the
// whole tree.
func (d *Document) Set(path string, v *Value) error {
	if path == "$" {
		d.Replace(v)
		return nil
	}
	return SetPath(d.root, path, v)
}

// Delete removes the value at path.
func (d *Document) Delete(path string) error {
	return DeletePath(d.root, path)
}

// Append adds values to the array at path and returns the new length.
func (d *Document) Append(path string, values ...*Value) (int, error) {
	return ArrayAppend(d.root, path, values...)
}

// Insert places value at index in the array at path.
func (d *Document) Insert(path string, index int, value *Value) error {
	return ArrayInsert(d.root, path, index, value)
}

// Pop removes and returns the element at index from the array at path.
func (d *Document) Pop(path string, index int) (*Value, error) {
	return ArrayPop(d.root, path, index)
}

// Length reports the element or row count of the collection at path.
func (d *Document) Length(path string) (int, error) {
	return ArrayLength(d.root, path)
}

// Merge folds source into the document root.
func (d *Document) Merge(source *Value) error {
	return Merge(d.root, source)
}

// Validate checks the tree for structural defects.
func (d *Document) Validate() error {
	return Validate(d.root)
}

// Encode renders the document in wire form.
func (d *Document) Encode() string {
	return Encode(d.root)
}

// ToJSON renders the document as compact JSON.
func (d *Document) ToJSON() (string, error) {
	return ToJSON(d.root)
}

// Tokens estimates the LLM-token cost of the encoded document.
func (d *Document) Tokens() int {
	return EstimateTokens(d.root)
}
