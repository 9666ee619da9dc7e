package core

// ConnectionParams describe a connection. Type selects the adapter and URL is
// handed to it; the quickstep adapter reads it as the profile path.
// Every field may hold a template, e.g. {{ env "HOME" }}/.qs_profile
type ConnectionParams struct {
	ID   ConnectionID `json:"id"`
	Name string       `json:"name"`
	Type string       `json:"type"`
	URL  string       `json:"url"`
}

// Expand returns a copy with all templates evaluated. Fields that fail to
// expand are copied as they are.
func (p *ConnectionParams) Expand() *ConnectionParams {
	return &ConnectionParams{
		ID:   ConnectionID(expandOrDefault(string(p.ID))),
		Name: expandOrDefault(p.Name),
		Type: expandOrDefault(p.Type),
		URL:  expandOrDefault(p.URL),
	}
}
