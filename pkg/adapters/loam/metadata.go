package loam

// CardMetadata is the front matter of one element card.
// It uses "mapstructure" tags so loam can decode the YAML header directly.
type CardMetadata struct {
	ID       string   `json:"id" mapstructure:"id"`
	Workshop string   `json:"workshop" mapstructure:"workshop"`
	Type     string   `json:"type" mapstructure:"type"`
	Name     string   `json:"name" mapstructure:"name"`
	Position int      `json:"position" mapstructure:"position"`
	Color    string   `json:"color,omitempty" mapstructure:"color"`
	Context  string   `json:"context,omitempty" mapstructure:"context"`
	Triggers []string `json:"triggers" mapstructure:"triggers"`
}
