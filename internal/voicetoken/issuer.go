package voicetoken

import (
	"errors"
	"fmt"
	"time"

	"swooche-router/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrConfiguration marks missing/invalid signing credentials at issue time.
// Fatal to the request, not the process; the operator must fix configuration.
var ErrConfiguration = errors.New("voicetoken: signing credentials not configured")

// VoiceToken is a signed, time-boxed capability granting the holder the right
// to register a calling device and place/receive calls under Identity.
// Not persisted, not revocable before expiry.
type VoiceToken struct {
	Token    string `json:"token"`
	Identity string `json:"identity"`
}

// Issuer mints Twilio voice access tokens.
//
// The token is a JWT signed with the API key secret (HS256, content type
// twilio-fpa;v=1) whose grants bind the identity to a voice grant permitting
// outbound originations through the configured TwiML application and inbound
// call acceptance.
type Issuer struct {
	accountSID string
	keySID     string
	keySecret  []byte
	appSID     string
	region     string
	ttl        time.Duration

	clock func() time.Time
}

func NewIssuer(cfg config.TwilioConfig) *Issuer {
	return &Issuer{
		accountSID: cfg.AccountSID,
		keySID:     cfg.APIKeySID,
		keySecret:  []byte(cfg.APIKeySecret),
		appSID:     cfg.TwiMLAppSID,
		region:     cfg.Region,
		ttl:        cfg.VoiceTokenTTL,
		clock:      time.Now,
	}
}

// Claims is the twilio-fpa access token claims shape.
type Claims struct {
	jwt.RegisteredClaims

	Grants Grants `json:"grants"`
}

type Grants struct {
	Identity string     `json:"identity"`
	Voice    VoiceGrant `json:"voice"`
}

type VoiceGrant struct {
	Incoming IncomingGrant `json:"incoming"`
	Outgoing OutgoingGrant `json:"outgoing"`
}

type IncomingGrant struct {
	Allow bool `json:"allow"`
}

type OutgoingGrant struct {
	ApplicationSID string `json:"application_sid"`
}

// Issue mints a token for the given identity. It always succeeds for a valid
// configured identity; the only failure mode is missing credentials.
func (i *Issuer) Issue(identity string) (VoiceToken, error) {
	if i.accountSID == "" || i.keySID == "" || len(i.keySecret) == 0 || i.appSID == "" {
		return VoiceToken{}, ErrConfiguration
	}
	if identity == "" {
		return VoiceToken{}, fmt.Errorf("voicetoken: identity required")
	}

	ttl := i.ttl
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := i.clock()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        fmt.Sprintf("%s-%s", i.keySID, uuid.NewString()),
			Issuer:    i.keySID,
			Subject:   i.accountSID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Grants: Grants{
			Identity: identity,
			Voice: VoiceGrant{
				Incoming: IncomingGrant{Allow: true},
				Outgoing: OutgoingGrant{ApplicationSID: i.appSID},
			},
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["cty"] = "twilio-fpa;v=1"
	if i.region != "" {
		// Regional tokens carry the region hint in the header.
		t.Header["twr"] = i.region
	}

	signed, err := t.SignedString(i.keySecret)
	if err != nil {
		return VoiceToken{}, err
	}
	return VoiceToken{Token: signed, Identity: identity}, nil
}

// Decode verifies a token minted by this issuer and returns its claims.
// Used by tests and diagnostics; clients treat the token as opaque.
func (i *Issuer) Decode(token string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return i.keySecret, nil
	})
	if err != nil {
		return Claims{}, err
	}
	return claims, nil
}
