package systemusers

type addRequest struct {
	Username string `json:"username" validate:"required,max=50" label:"Username"`
	Email    string `json:"email" validate:"required,strictemail" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
	Role     string `json:"role" validate:"omitempty,role" label:"Role"`
}

// updateRequest holds optional edits; absent fields are unchanged.
type updateRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=50" label:"Username"`
	Email    *string `json:"email" validate:"omitempty,strictemail" label:"Email"`
	Role     *string `json:"role" validate:"omitempty,role" label:"Role"`
	Password *string `json:"password" label:"Password"`
}
