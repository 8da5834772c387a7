package subscription

import "strings"

// Encodings accepted by subscription endpoints
const (
	EncodingJSON = "json"
	EncodingForm = "form"
)

// Newsletter is one entry of the subscription catalog. Endpoint is optional;
// without it the helper only hands out the manual URL.
type Newsletter struct {
	Key         string
	Name        string
	Button      string
	Description string
	URL         string

	Endpoint     string
	Encoding     string
	EmailField   string
	ConsentField string
}

// Automated reports whether Subscribe will attempt a POST for this entry
func (n Newsletter) Automated() bool {
	return n.Endpoint != ""
}

// Catalog is an ordered list of newsletters
type Catalog []Newsletter

// DefaultCatalog lists the newsletters offered by /suscribir. None of them
// is automated until an endpoint is configured.
var DefaultCatalog = Catalog{
	{
		Key:         "guardian",
		Name:        "📰 The Guardian",
		Button:      "📰 The Guardian",
		Description: "Noticias internacionales",
		URL:         "https://www.theguardian.com/email",
	},
	{
		Key:         "techcrunch",
		Name:        "🚀 TechCrunch",
		Button:      "🚀 TechCrunch",
		Description: "Startups y tecnología",
		URL:         "https://techcrunch.com/newsletters/",
	},
	{
		Key:         "mittr",
		Name:        "🔬 MIT Technology Review",
		Button:      "🔬 MIT Tech Review",
		Description: "Ciencia e innovación",
		URL:         "https://www.technologyreview.com/newsletter/",
	},
	{
		Key:         "producthunt",
		Name:        "🛍️ Product Hunt",
		Button:      "🛍️ Product Hunt",
		Description: "Nuevos productos digitales",
		URL:         "https://www.producthunt.com/newsletter",
	},
}

// Find returns the newsletter registered under key (case-insensitive)
func (c Catalog) Find(key string) (Newsletter, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, n := range c {
		if n.Key == key {
			return n, true
		}
	}
	return Newsletter{}, false
}

// clone returns a copy that can be modified without touching c
func (c Catalog) clone() Catalog {
	out := make(Catalog, len(c))
	copy(out, c)
	return out
}
