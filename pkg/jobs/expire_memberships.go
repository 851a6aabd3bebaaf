package jobs

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/softmembers/soft-members/pkg/backend"
	"github.com/softmembers/soft-members/pkg/config"
)

// ExpireMembershipsJob is the name of the membership expiry job.
const ExpireMembershipsJob = "expire-memberships"

func init() {
	Register(ExpireMembershipsJob, expireMemberships{})
}

// expireMemberships moves active memberships past their end date to
// expired.
type expireMemberships struct{}

var _ Runner = expireMemberships{}

// Spec implements Runner.
func (expireMemberships) Spec(ctx context.Context) string {
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return ""
	}
	return cfg.Jobs.ExpireMemberships
}

// Func implements Runner.
func (expireMemberships) Func(ctx context.Context) func() {
	be := backend.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("jobs.expire-memberships")
	return func() {
		expired, err := be.ExpireMemberships(ctx)
		if err != nil {
			logger.Error("error expiring memberships", "err", err)
			return
		}

		if len(expired) > 0 {
			logger.Info("expired memberships", "count", len(expired))
		} else {
			logger.Debug("no memberships to expire")
		}
	}
}
