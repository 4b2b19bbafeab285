package salesking

var plurals = map[string]string{
	"address": "addresses",
	"company": "companies",
}

// Pluralize returns the key under which the API lists resources of
// resourceType.
func Pluralize(resourceType string) string {
	if p, ok := plurals[resourceType]; ok {
		return p
	}
	return resourceType + "s"
}
