package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cploetz77/port-to-port-map-generator/internal/metrics"
	"github.com/cploetz77/port-to-port-map-generator/internal/notify"
	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

// AlertPolicy decides which resolution outcomes reach the notifier.
// Failures are always sent.
type AlertPolicy struct {
	NotifyOnDegraded bool
}

// ProcessAlert tells the operator about a failed or degraded resolution.
// Exact matches and customer overrides send nothing. A nil notifier is a
// no-op.
func ProcessAlert(
	ctx context.Context,
	n notify.Notifier,
	policy AlertPolicy,
	shopDomain string,
	res *Resolution,
	resErr error,
) error {
	if n == nil {
		return nil
	}

	payload := buildAlertPayload(policy, shopDomain, res, resErr)
	if payload == nil {
		return nil
	}

	if err := n.SendAlert(ctx, payload); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		return fmt.Errorf("sending %s alert: %w", payload.Kind, err)
	}

	metrics.NotificationsSentTotal.Inc()
	return nil
}

func buildAlertPayload(
	policy AlertPolicy,
	shopDomain string,
	res *Resolution,
	resErr error,
) *notify.AlertPayload {
	if resErr != nil {
		payload := &notify.AlertPayload{
			Kind:       notify.KindResolutionFailed,
			ShopDomain: shopDomain,
			Detail:     resErr.Error(),
		}
		var rerr *ResolutionError
		if errors.As(resErr, &rerr) {
			fillOrder(payload, rerr.Order)
			fillFields(payload, rerr.Resolved)
		}
		return payload
	}

	if res == nil || res.Result == nil || res.Result.Match == nil || !res.Result.Match.Degraded {
		return nil
	}
	if !policy.NotifyOnDegraded {
		return nil
	}

	m := res.Result.Match
	payload := &notify.AlertPayload{
		Kind:       notify.KindDegradedMatch,
		ShopDomain: shopDomain,
		Detail: fmt.Sprintf("%s %s (record %d of %d): %s",
			m.ShipName, m.CruiseDate, m.RecordIndex+1, m.DatasetSize,
			strings.Join(res.Result.Ports, " -> "),
		),
	}
	fillOrder(payload, res.Order)
	fillFields(payload, &res.Resolved)
	return payload
}

func fillOrder(p *notify.AlertPayload, o *domain.Order) {
	if o == nil {
		return
	}
	p.OrderID = string(o.ID)
	p.OrderName = string(o.Name)
	p.Email = string(o.Email)
}

func fillFields(p *notify.AlertPayload, rf *domain.ResolvedFields) {
	if rf == nil {
		return
	}
	p.CruiseLine = deref(rf.CruiseLine)
	p.ShipName = deref(rf.ShipName)
	p.SailDate = deref(rf.SailDate)
}
