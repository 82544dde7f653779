package biz

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"

	"github.com/accounthub/accounthub/internal/authz"
	"github.com/accounthub/accounthub/internal/directory"
	"github.com/accounthub/accounthub/internal/log"
)

// AuthConfig carries the shared-secret verification settings for inbound
// bearer tokens.
type AuthConfig struct {
	SecretKey string `conf:"secret_key" yaml:"secret_key" json:"secret_key"`
	Issuer    string `conf:"issuer" yaml:"issuer" json:"issuer"`
}

type AuthServiceParams struct {
	fx.In

	Config       AuthConfig
	Affiliations directory.AffiliationDirectory
}

func NewAuthService(params AuthServiceParams) *AuthService {
	return &AuthService{
		config:       params.Config,
		affiliations: params.Affiliations,
	}
}

// AuthService verifies inbound bearer tokens and legacy entity passcodes. It
// hands the decoded claim set to authz for classification; it owns no
// authorization decisions itself.
type AuthService struct {
	config       AuthConfig
	affiliations directory.AffiliationDirectory
}

// HashPasscode hashes an entity passcode using bcrypt.
func HashPasscode(passcode string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passcode: %w", err)
	}

	return hex.EncodeToString(hashed), nil
}

// VerifyPasscode verifies an entity passcode against a stored hash.
func VerifyPasscode(hashedPasscode, passcode string) error {
	decoded, err := hex.DecodeString(hashedPasscode)
	if err != nil {
		return fmt.Errorf("failed to decode hashed passcode: %w", err)
	}

	err = bcrypt.CompareHashAndPassword(decoded, []byte(passcode))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPasscode, err)
	}

	return nil
}

// AuthenticateToken validates a bearer token and returns the decoded claim
// map for principal classification.
func (s *AuthService) AuthenticateToken(ctx context.Context, tokenString string) (map[string]any, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method: %v", ErrInvalidJWT, token.Header["alg"])
		}

		return []byte(s.config.SecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJWT, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidJWT
	}

	if s.config.Issuer != "" {
		issuer, err := claims.GetIssuer()
		if err != nil || issuer != s.config.Issuer {
			return nil, fmt.Errorf("%w: unexpected issuer", ErrInvalidJWT)
		}
	}

	log.Debug(ctx, "token authenticated", log.String("sub", fmt.Sprint(claims["sub"])))

	return claims, nil
}

// ClassifyToken validates a bearer token and classifies its claims into a
// principal.
func (s *AuthService) ClassifyToken(ctx context.Context, tokenString string) (*authz.PrincipalContext, error) {
	claims, err := s.AuthenticateToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	return authz.Classify(claims)
}

// AuthenticatePasscode authenticates a legacy entity passcode against the
// stored hash and produces the passcode principal. Unknown identifiers and
// entities without a passcode report the same failure as a wrong passcode.
func (s *AuthService) AuthenticatePasscode(
	ctx context.Context,
	businessIdentifier, passcode string,
) (*authz.PrincipalContext, error) {
	entity, err := s.affiliations.FindEntity(ctx, businessIdentifier)
	if err != nil {
		log.Error(ctx, "failed to get entity", log.Cause(err))

		return nil, ErrInternal
	}

	if entity == nil || entity.PasscodeHash == "" {
		return nil, fmt.Errorf("invalid business identifier or passcode: %w", ErrInvalidPasscode)
	}

	err = VerifyPasscode(entity.PasscodeHash, passcode)
	if err != nil {
		return nil, fmt.Errorf("invalid business identifier or passcode: %w", ErrInvalidPasscode)
	}

	log.Debug(ctx, "passcode authenticated", log.String("business_identifier", entity.BusinessIdentifier))

	return authz.FromClaims(authz.Claims{
		SubjectID:   entity.BusinessIdentifier,
		LoginSource: authz.LoginSourcePasscode,
		Username:    entity.BusinessIdentifier,
	}), nil
}

// GeneratePasscodeToken generates a bearer token for a passcode principal,
// verifiable by AuthenticateToken.
func (s *AuthService) GeneratePasscodeToken(ctx context.Context, principal *authz.PrincipalContext) (string, error) {
	claims := jwt.MapClaims{
		"sub":          principal.SubjectID(),
		"username":     principal.Username(),
		"loginSource":  string(authz.LoginSourcePasscode),
		"realm_access": map[string]any{"roles": []string{}},
		"exp":          time.Now().Add(8 * time.Hour).Unix(),
	}

	if s.config.Issuer != "" {
		claims["iss"] = s.config.Issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}
