// Package invites gates admin registration behind single-use codes.
package invites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lysyi3m/radio-site/app/apperr"
	"github.com/lysyi3m/radio-site/app/content"
	"github.com/lysyi3m/radio-site/app/store"
)

const codeLength = 10

type Service struct {
	codes *content.Repository[content.InvitationCode, *content.InvitationCode]
	now   func() time.Time
}

func NewService(codes *content.Repository[content.InvitationCode, *content.InvitationCode]) *Service {
	return &Service{codes: codes, now: time.Now}
}

func invalidCode(reason string) error {
	return apperr.NewAuthError(apperr.AuthInvalidCode, errors.New(reason))
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *Service) lookup(ctx context.Context, code string) (*content.InvitationCode, error) {
	code = normalize(code)
	if code == "" {
		return nil, invalidCode("empty code")
	}

	found, err := s.codes.List(ctx, store.Query{
		Where:   []store.Filter{{Field: "code", Value: code}},
		OrderBy: "code",
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, invalidCode("unknown code")
	}
	return &found[0], nil
}

// Validate reports whether code exists and is still unredeemed. It does not
// reserve the code; only Redeem does.
func (s *Service) Validate(ctx context.Context, code string) (*content.InvitationCode, error) {
	inv, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if inv.Used {
		return nil, invalidCode("code already used")
	}
	return inv, nil
}

// Redeem marks code as used by usedBy. The used check and the write happen
// in one transaction, so of several concurrent redemptions exactly one
// succeeds.
func (s *Service) Redeem(ctx context.Context, code, usedBy string) (*content.InvitationCode, error) {
	inv, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Second)
	redeemed, err := s.codes.Modify(ctx, inv.ID, func(v *content.InvitationCode) error {
		if v.Used {
			return invalidCode("code already used")
		}
		v.Used = true
		v.UsedBy = usedBy
		v.UsedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Invitation code redeemed", "code_id", redeemed.ID, "used_by", usedBy)
	return redeemed, nil
}

// Release returns a code redeemed by usedBy to the unredeemed state. It is
// the compensation step when account creation fails after Redeem.
func (s *Service) Release(ctx context.Context, code, usedBy string) error {
	inv, err := s.lookup(ctx, code)
	if err != nil {
		return err
	}

	_, err = s.codes.Modify(ctx, inv.ID, func(v *content.InvitationCode) error {
		if !v.Used || v.UsedBy != usedBy {
			return fmt.Errorf("%w: code is not redeemed by %s", apperr.ErrConflict, usedBy)
		}
		v.Used = false
		v.UsedBy = ""
		v.UsedAt = nil
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Invitation code released", "code_id", inv.ID, "used_by", usedBy)
	return nil
}

// Generate creates n fresh codes.
func (s *Service) Generate(ctx context.Context, n int) ([]content.InvitationCode, error) {
	if n < 1 || n > 100 {
		return nil, fmt.Errorf("%w: count must be between 1 and 100", apperr.ErrInvalidArgument)
	}

	out := make([]content.InvitationCode, 0, n)
	for i := 0; i < n; i++ {
		inv := &content.InvitationCode{Code: NewCode()}
		if _, err := s.codes.Upsert(ctx, inv); err != nil {
			return out, err
		}
		out = append(out, *inv)
	}

	slog.Info("Invitation codes generated", "count", n)
	return out, nil
}

// NewCode returns a random upper-case code.
func NewCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:codeLength])
}
