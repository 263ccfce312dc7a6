package sendgrid

// Subuser is one subuser on the account.
type Subuser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Disabled bool   `json:"disabled"`
}

// AuthenticatedDomain is one authenticated sending domain.
type AuthenticatedDomain struct {
	ID        int64  `json:"id"`
	Domain    string `json:"domain"`
	Subdomain string `json:"subdomain,omitempty"`
	Username  string `json:"username"`
	Valid     bool   `json:"valid"`
	Default   bool   `json:"default"`
}

// IPAddress is one IP on the account with its assigned subusers.
type IPAddress struct {
	IP        string   `json:"ip"`
	Subusers  []string `json:"subusers"`
	Warmup    bool     `json:"warmup"`
	Pools     []string `json:"pools"`
	Whitelist bool     `json:"whitelabeled"`
}
