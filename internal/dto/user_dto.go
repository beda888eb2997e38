package dto

// ClerkWebhookRequest is the subset of an identity-provider user event we read.
type ClerkWebhookRequest struct {
	Type string           `json:"type,omitempty"`
	Data ClerkWebhookUser `json:"data"`
}

type ClerkWebhookUser struct {
	Id                    string              `json:"id" validate:"required"`
	PrimaryEmailAddressId string              `json:"primary_email_address_id"`
	EmailAddresses        []ClerkEmailAddress `json:"email_addresses"`
}

type ClerkEmailAddress struct {
	Id           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// PrimaryEmail returns the address whose id matches PrimaryEmailAddressId.
func (u ClerkWebhookUser) PrimaryEmail() (string, bool) {
	for _, e := range u.EmailAddresses {
		if e.Id == u.PrimaryEmailAddressId && e.EmailAddress != "" {
			return e.EmailAddress, true
		}
	}
	return "", false
}

// UserDeletedMessage is published on the in-process bus when an account goes away.
type UserDeletedMessage struct {
	ClerkId string `json:"clerk_id"`
}
