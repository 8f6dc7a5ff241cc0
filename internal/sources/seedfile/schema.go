package seedfile

// Entry is one site definition in the YAML seed file.
type Entry struct {
	URL      string `yaml:"url"`
	Label    string `yaml:"label"`
	Scope    string `yaml:"scope"`    // "domain" (default) or "url"
	Cooldown string `yaml:"cooldown"` // Go duration string, ex: "45m"
	Favicon  string `yaml:"favicon"`
}

// File is the root structure of the seed file.
//
//	sites:
//	  - url: https://news.ycombinator.com
//	    label: HN
//	    cooldown: 45m
type File struct {
	Sites []Entry `yaml:"sites"`
}
