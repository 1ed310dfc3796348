package addr

import "strings"

// Account db model, keyed by address.
// Tags are stored comma-joined in a single column.
// Rows are write-once: metadata is never refreshed after first resolution.
type Account struct {
	Address string
	Label   string
	Tags    string
	Type    string
	Icon    string
}

// TagList splits the comma-joined tags column into a list.
// An empty column yields an empty, non-nil list.
func (a *Account) TagList() []string {
	if a.Tags == "" {
		return []string{}
	}
	return strings.Split(a.Tags, ",")
}

// JoinTags joins a tag list into the comma-joined db form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}
