package sparkpost

// SendingDomain is one sending domain on the account.
type SendingDomain struct {
	Domain       string `json:"domain"`
	SharedWith   int    `json:"shared_with_subaccounts,omitempty"`
	SubaccountID int    `json:"subaccount_id,omitempty"`
	Status       struct {
		OwnershipVerified bool   `json:"ownership_verified"`
		DKIMStatus        string `json:"dkim_status"`
		ComplianceStatus  string `json:"compliance_status"`
	} `json:"status"`
}

// Subaccount is one subaccount on the account.
type Subaccount struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// IPPool is a dedicated IP pool and its member IPs.
type IPPool struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	IPs  []struct {
		ExternalIP string `json:"external_ip"`
		Hostname   string `json:"hostname"`
	} `json:"ips"`
}

type sendingDomainsResponse struct {
	Results []SendingDomain `json:"results"`
}

type subaccountsResponse struct {
	Results []Subaccount `json:"results"`
}

type ipPoolsResponse struct {
	Results []IPPool `json:"results"`
}
