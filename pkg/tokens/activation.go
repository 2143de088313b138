package tokens

import "github.com/golang-jwt/jwt/v5"

func (i *Issuer) SignActivation(accountID string) (string, error) {
	now := i.now()
	claims := ActivationClaims{
		Type: TypeActivation,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ActivationTTL)),
		},
	}
	return i.sign(claims)
}

func (i *Issuer) ParseActivation(tokenStr string) (*ActivationClaims, error) {
	var claims ActivationClaims
	if err := i.parse(tokenStr, &claims); err != nil {
		return nil, err
	}
	if claims.Type != TypeActivation {
		return nil, ErrWrongTokenType
	}
	return &claims, nil
}
