package dispute

import (
	"encoding/json"
	"strings"
)

// TagSet is a duplicate-free set of free-text labels. Display casing of the
// first occurrence is preserved; matching and deduplication are case-folded.
type TagSet struct {
	values []string
}

// NewTagSet creates a tag set from the given labels, dropping blanks and
// duplicates
func NewTagSet(tags ...string) *TagSet {
	t := &TagSet{}
	for _, tag := range tags {
		t.Add(tag)
	}
	return t
}

// ParseTagList splits a comma-separated tag column into a TagSet
func ParseTagList(raw string) *TagSet {
	return NewTagSet(strings.Split(raw, ",")...)
}

// Add inserts a tag if an equivalent one is not already present.
// Returns true if the set changed.
func (t *TagSet) Add(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	folded := strings.ToLower(tag)
	for _, v := range t.values {
		if strings.ToLower(v) == folded {
			return false
		}
	}
	t.values = append(t.values, tag)
	return true
}

// HasMatch reports whether any tag contains the given keyword, case-folded
func (t *TagSet) HasMatch(keyword string) bool {
	if t == nil {
		return false
	}
	keyword = strings.ToLower(keyword)
	for _, v := range t.values {
		if strings.Contains(strings.ToLower(v), keyword) {
			return true
		}
	}
	return false
}

// Values returns the tags in insertion order with display casing preserved
func (t *TagSet) Values() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.values))
	copy(out, t.values)
	return out
}

// Len returns the number of tags in the set
func (t *TagSet) Len() int {
	if t == nil {
		return 0
	}
	return len(t.values)
}

// Clone returns an independent copy of the set
func (t *TagSet) Clone() *TagSet {
	if t == nil {
		return NewTagSet()
	}
	return NewTagSet(t.values...)
}

// MarshalJSON encodes the set as a plain list of labels
func (t *TagSet) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.values)
}

// UnmarshalJSON decodes a list of labels, re-applying deduplication
func (t *TagSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	t.values = nil
	for _, v := range values {
		t.Add(v)
	}
	return nil
}
