package schema

import "github.com/better-auth/adaptercore/schema/field"

// Base returns the always-present core schema (spec.md §3): user, session,
// account, verification. Plugin schemas and user overrides are composed
// on top of this via Compose.
func Base() Schema {
	return Schema{
		"user": {
			Order: 0,
			Fields: map[string]field.Descriptor{
				"name":          field.String("name").Descriptor(),
				"email":         field.String("email").Unique().Descriptor(),
				"emailVerified": field.Bool("email_verified").Default(false).Descriptor(),
				"image":         field.String("image").Optional().Descriptor(),
				"createdAt":     field.Date("created_at").DefaultFunc(nowFunc).Immutable().Descriptor(),
				"updatedAt":     field.Date("updated_at").DefaultFunc(nowFunc).OnUpdate(nowFunc).Immutable().Descriptor(),
			},
		},
		"session": {
			Order: 1,
			Fields: map[string]field.Descriptor{
				"expiresAt": field.Date("expires_at").Descriptor(),
				"token":     field.String("token").Unique().Descriptor(),
				"createdAt": field.Date("created_at").DefaultFunc(nowFunc).Immutable().Descriptor(),
				"updatedAt": field.Date("updated_at").DefaultFunc(nowFunc).OnUpdate(nowFunc).Immutable().Descriptor(),
				"ipAddress": field.String("ip_address").Optional().Descriptor(),
				"userAgent": field.String("user_agent").Optional().Descriptor(),
				"userId":    field.String("user_id").References("user", field.OnDeleteRef("cascade")).Descriptor(),
			},
		},
		"account": {
			Order: 2,
			Fields: map[string]field.Descriptor{
				"accountId":             field.String("account_id").Descriptor(),
				"providerId":            field.String("provider_id").Descriptor(),
				"userId":                field.String("user_id").References("user", field.OnDeleteRef("cascade")).Descriptor(),
				"accessToken":           field.String("access_token").Optional().Descriptor(),
				"refreshToken":          field.String("refresh_token").Optional().Descriptor(),
				"idToken":               field.String("id_token").Optional().Descriptor(),
				"accessTokenExpiresAt":  field.Date("access_token_expires_at").Optional().Descriptor(),
				"refreshTokenExpiresAt": field.Date("refresh_token_expires_at").Optional().Descriptor(),
				"scope":                 field.String("scope").Optional().Descriptor(),
				"password":              field.String("password").Optional().Descriptor(),
				"createdAt":             field.Date("created_at").DefaultFunc(nowFunc).Immutable().Descriptor(),
				"updatedAt":             field.Date("updated_at").DefaultFunc(nowFunc).OnUpdate(nowFunc).Immutable().Descriptor(),
			},
		},
		"verification": {
			Order: 3,
			Fields: map[string]field.Descriptor{
				"identifier": field.String("identifier").Descriptor(),
				"value":      field.String("value").Descriptor(),
				"expiresAt":  field.Date("expires_at").Descriptor(),
				"createdAt":  field.Date("created_at").DefaultFunc(nowFunc).Optional().Immutable().Descriptor(),
				"updatedAt":  field.Date("updated_at").DefaultFunc(nowFunc).OnUpdate(nowFunc).Optional().Immutable().Descriptor(),
			},
		},
	}
}

// nowFunc is the default/onUpdate function used for created_at/updated_at
// columns. Declared as a variable (not an inline closure) so tests can
// observe the same value being called for both defaultValue and onUpdate.
var nowFunc = func() any { return timeNow() }
