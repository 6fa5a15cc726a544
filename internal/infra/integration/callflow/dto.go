package callflow

// CallPayload is the JSON body the calling workflow expects.
type CallPayload struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	Company           string `json:"company"`
	JobPostingURL     string `json:"job_posting_url,omitempty"`
	CityState         string `json:"city_state,omitempty"`
	SalaryRange       string `json:"salary_range,omitempty"`
	DecisionMakerName string `json:"decision_maker_name,omitempty"`
	CreatedAt         string `json:"created_at,omitempty"`
	UpdatedAt         string `json:"updated_at,omitempty"`
	ContactListID     string `json:"contact_list_id,omitempty"`
}

// CallResponse is whatever JSON object the workflow answered with.
type CallResponse map[string]any

func defaultResponse() CallResponse {
	return CallResponse{"message": "Success"}
}
