package domain

import "fmt"

// KeyPrefix namespaces every key boostlab writes to the database.
const KeyPrefix = "boostlab:"

// IndexName returns the FT index name of a collection.
func IndexName(collection string) string {
	return fmt.Sprintf("%s%s:idx", KeyPrefix, collection)
}

// DocPrefix returns the hash key prefix of a collection's documents.
func DocPrefix(collection string) string {
	return fmt.Sprintf("%s%s:doc:", KeyPrefix, collection)
}

// DocKey returns the hash key of a single document.
func DocKey(collection, id string) string {
	return DocPrefix(collection) + id
}

// TermsField names the tokenized companion of a keyword field. Keyword
// fields filter on their exact tags and score through this field.
func TermsField(name string) string {
	return name + "__terms"
}

// ProfileKey returns the key of a stored boost profile.
func ProfileKey(name string) string {
	return fmt.Sprintf("%sprofile:%s", KeyPrefix, name)
}
