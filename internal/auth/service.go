package auth

import (
	"context"
	"strings"
	"time"

	pkgAuth "github.com/angelmondragon/bufferstock-backend/pkg/auth"
	"github.com/angelmondragon/bufferstock-backend/pkg/config"
	"github.com/angelmondragon/bufferstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bufferstock-backend/pkg/errors"
	"github.com/angelmondragon/bufferstock-backend/pkg/logger"
	"github.com/angelmondragon/bufferstock-backend/pkg/security"
)

// Service authenticates operators against the configured roster.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

// ServiceParams names the dependencies for the auth service.
type ServiceParams struct {
	Operators config.OperatorsConfig
	JWT       config.JWTConfig
	Logger    *logger.Logger
}

type service struct {
	operators []config.Operator
	jwtCfg    config.JWTConfig
	logg      *logger.Logger
	now       func() time.Time
}

// NewService parses the operator roster once at startup.
func NewService(params ServiceParams) (Service, error) {
	operators, err := params.Operators.Parse()
	if err != nil {
		return nil, err
	}
	if len(operators) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "no operators configured")
	}
	return &service{
		operators: operators,
		jwtCfg:    params.JWT,
		logg:      params.Logger,
		now:       time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	name := strings.TrimSpace(req.Operator)
	if name == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator and password are required")
	}

	operator, ok := s.find(name)
	if !ok {
		// run the hash anyway so unknown names cost the same as bad passwords
		_, _ = security.VerifyPassword(req.Password, dummyHash)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	match, err := security.VerifyPassword(req.Password, operator.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		if s.logg != nil {
			logCtx := s.logg.WithOperator(ctx, operator.Name)
			s.logg.Warn(logCtx, "auth.login.rejected")
		}
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	role, err := enums.ParseOperatorRole(operator.Role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "operator role misconfigured")
	}

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		Operator: operator.Name,
		Role:     role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	if s.logg != nil {
		logCtx := s.logg.WithOperator(ctx, operator.Name)
		s.logg.Info(logCtx, "auth.login.succeeded")
	}

	return &LoginResponse{
		AccessToken: token,
		Operator:    operator.Name,
		Role:        string(role),
		CanWrite:    role.CanWrite(),
	}, nil
}

func (s *service) find(name string) (config.Operator, bool) {
	for _, operator := range s.operators {
		if strings.EqualFold(operator.Name, name) {
			return operator, true
		}
	}
	return config.Operator{}, false
}

// dummyHash keeps the verify cost constant for unknown operator names.
const dummyHash = "$argon2id$v=19$m=32768,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
