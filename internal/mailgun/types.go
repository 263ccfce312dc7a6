package mailgun

// Domain is one sending domain on the account.
type Domain struct {
	Name       string `json:"name"`
	State      string `json:"state"`
	Type       string `json:"type"`
	CreatedAt  string `json:"created_at"`
	IsDisabled bool   `json:"is_disabled"`
	WebScheme  string `json:"web_scheme,omitempty"`
}

type domainsResponse struct {
	TotalCount int      `json:"total_count"`
	Items      []Domain `json:"items"`
}

type ipsResponse struct {
	TotalCount int      `json:"total_count"`
	Items      []string `json:"items"`
}
