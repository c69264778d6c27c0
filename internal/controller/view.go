package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/i474232898/weather-lookup/internal/common"
)

// View is the screen the presentation layer shows.
type View string

const (
	ViewHome    View = "home"
	ViewSearch  View = "search"
	ViewHistory View = "history"
)

// ParseView accepts a view name in any case.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewHome, ViewSearch, ViewHistory:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
	}
}

// SelectTab makes v the active view. Any view can follow any other.
func (c *Controller) SelectTab(v View) error {
	if _, err := ParseView(string(v)); err != nil {
		return err
	}
	c.mu.Lock()
	c.active = v
	c.mu.Unlock()
	return nil
}

func (c *Controller) ActiveView() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// DeleteTarget names what a delete request removes.
type DeleteTarget string

const (
	DeleteHistoryEntry  DeleteTarget = "history"
	DeleteForecastEntry DeleteTarget = "forecast"
	DeleteCityForecasts DeleteTarget = "city-forecasts"
	DeleteAllHistory    DeleteTarget = "all-history"
	DeleteAllForecasts  DeleteTarget = "all-forecasts"
)

// DeleteRequest identifies records to remove. ID is used by the single-row
// targets, City by DeleteCityForecasts.
type DeleteRequest struct {
	Target DeleteTarget
	ID     int64
	City   string
}

// RequestDelete removes records and returns how many rows went away.
func (c *Controller) RequestDelete(ctx context.Context, req DeleteRequest) (int64, error) {
	var (
		n   int64
		err error
	)
	switch req.Target {
	case DeleteHistoryEntry:
		if req.ID <= 0 {
			return 0, fmt.Errorf("%w: id required", ErrValidation)
		}
		n, err = c.store.DeleteHistory(ctx, req.ID)
	case DeleteForecastEntry:
		if req.ID <= 0 {
			return 0, fmt.Errorf("%w: id required", ErrValidation)
		}
		n, err = c.store.DeleteForecast(ctx, req.ID)
	case DeleteCityForecasts:
		if common.IsBlank(req.City) {
			return 0, fmt.Errorf("%w: city required", ErrValidation)
		}
		n, err = c.store.DeleteForecastsForCity(ctx, req.City)
	case DeleteAllHistory:
		n, err = c.store.DeleteAllHistory(ctx)
	case DeleteAllForecasts:
		n, err = c.store.DeleteAllForecasts(ctx)
	default:
		return 0, fmt.Errorf("%w: unknown delete target %q", ErrValidation, req.Target)
	}
	if err != nil {
		c.metrics.StoreErrors.WithLabelValues("delete").Inc()
		c.logger.Error("delete failed", "target", req.Target, "error", err)
		return 0, err
	}
	c.logger.Info("records deleted", "target", req.Target, "count", n)
	return n, nil
}
