package constituencies

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters Filters) ([]Constituency, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id string) (*Constituency, error) {
	return s.repo.GetByID(ctx, id)
}

// Detect resolves the constituency containing the coordinate.
func (s *Service) Detect(ctx context.Context, lat, lng float64) (*Constituency, error) {
	return s.repo.DetectByPoint(ctx, lat, lng)
}

type PointError struct {
	Field   string
	Message string
}

func (e PointError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ParsePoint reads and validates lat/lng query parameters.
func ParsePoint(values url.Values) (lat, lng float64, err error) {
	lat, err = parseCoordinate("lat", values.Get("lat"), 90)
	if err != nil {
		return 0, 0, err
	}
	lng, err = parseCoordinate("lng", values.Get("lng"), 180)
	if err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}

func parseCoordinate(field, value string, bound float64) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, PointError{Field: field, Message: "is required"}
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, PointError{Field: field, Message: "must be a number"}
	}
	if parsed < -bound || parsed > bound {
		return 0, PointError{Field: field, Message: fmt.Sprintf("must be between %.0f and %.0f", -bound, bound)}
	}
	return parsed, nil
}
