package ui

// Inputs are the facts button enablement depends on.
type Inputs struct {
	KeyEmpty   bool
	BlogEmpty  bool
	Ready      bool
	KeyMatches bool // the key input equals the session's active key
	HasPosts   bool
	Loading    bool
}

// Buttons reports which controls are enabled.
type Buttons struct {
	ClearKey   bool `json:"clear_key"`
	GetPosts   bool `json:"get_posts"`
	Initialize bool `json:"initialize"`
	Remember   bool `json:"remember"`
	SaveHTML   bool `json:"save_html"`
}

// ButtonStates is a pure function of in. Everything is disabled while an
// operation is in flight.
func ButtonStates(in Inputs) Buttons {
	if in.Loading {
		return Buttons{}
	}
	current := in.Ready && in.KeyMatches
	return Buttons{
		ClearKey:   !in.KeyEmpty,
		GetPosts:   !in.BlogEmpty && !in.KeyEmpty && current,
		Initialize: !in.KeyEmpty && !current,
		Remember:   !in.KeyEmpty,
		SaveHTML:   in.HasPosts,
	}
}
