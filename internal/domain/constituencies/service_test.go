package constituencies

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	// contains maps "lat,lng" keys to a constituency for DetectByPoint.
	byID     map[string]Constituency
	contains func(lat, lng float64) *Constituency
}

func (f *fakeRepository) List(ctx context.Context, filters Filters) ([]Constituency, error) {
	var items []Constituency
	for _, item := range f.byID {
		if filters.Province != "" && item.Province != filters.Province {
			continue
		}
		if filters.District != "" && item.District != filters.District {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id string) (*Constituency, error) {
	item, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (f *fakeRepository) DetectByPoint(ctx context.Context, lat, lng float64) (*Constituency, error) {
	if f.contains != nil {
		if item := f.contains(lat, lng); item != nil {
			return item, nil
		}
	}
	return nil, ErrNotFound
}

func TestParsePoint(t *testing.T) {
	values := url.Values{}
	values.Set("lat", "27.7172")
	values.Set("lng", "85.3240")

	lat, lng, err := ParsePoint(values)

	require.NoError(t, err)
	require.Equal(t, 27.7172, lat)
	require.Equal(t, 85.3240, lng)
}

func TestParsePointValidation(t *testing.T) {
	cases := []struct {
		name   string
		lat    string
		lng    string
		wantIn string
	}{
		{name: "missing lat", lng: "85.3", wantIn: "lat"},
		{name: "missing lng", lat: "27.7", wantIn: "lng"},
		{name: "lat not a number", lat: "north", lng: "85.3", wantIn: "lat"},
		{name: "lat out of range", lat: "-91", lng: "85.3", wantIn: "lat"},
		{name: "lng out of range", lat: "27.7", lng: "181", wantIn: "lng"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := url.Values{}
			if tc.lat != "" {
				values.Set("lat", tc.lat)
			}
			if tc.lng != "" {
				values.Set("lng", tc.lng)
			}

			_, _, err := ParsePoint(values)

			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantIn)
		})
	}
}

func TestDetect(t *testing.T) {
	inside := Constituency{ID: "ktm-1", Name: "Kathmandu 1", Province: "Bagmati", District: "Kathmandu"}
	repo := &fakeRepository{
		byID: map[string]Constituency{"ktm-1": inside},
		contains: func(lat, lng float64) *Constituency {
			if lat > 27.6 && lat < 27.8 && lng > 85.2 && lng < 85.4 {
				return &inside
			}
			return nil
		},
	}
	service := NewService(repo)

	found, err := service.Detect(context.Background(), 27.7172, 85.3240)
	require.NoError(t, err)
	require.Equal(t, "ktm-1", found.ID)

	_, err = service.Detect(context.Background(), 28.5, 84.0)
	require.ErrorIs(t, err, ErrNotFound)
}
