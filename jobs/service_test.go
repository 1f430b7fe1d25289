package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/user/jobbee-go/apperror"
	"github.com/user/jobbee-go/auth"
	"github.com/user/jobbee-go/geocoder"
)

// fakeGeocoder returns a fixed location, standing in for the provider.
type fakeGeocoder struct {
	loc *geocoder.Location
	err error
}

func (f *fakeGeocoder) Geocode(_ context.Context, _ string) (*geocoder.Location, error) {
	return f.loc, f.err
}

func testLocation() *geocoder.Location {
	return &geocoder.Location{
		Latitude:         40.7128,
		Longitude:        -74.006,
		FormattedAddress: "New York, NY, USA",
		City:             "New York",
		State:            "NY",
		Zipcode:          "10001",
		Country:          "us",
	}
}

func validRequest() CreateJobRequest {
	return CreateJobRequest{
		Title:        "Senior Node Developer",
		Description:  "Build APIs",
		Email:        "hiring@example.com",
		Address:      "651 Rr 2, Oquawka, IL",
		Company:      "Example Inc",
		Industry:     []string{"Information Technology"},
		JobType:      JobTypePermanent,
		MinEducation: "Masters",
		Experience:   "1-2 Years",
		Salary:       120000,
	}
}

func TestBuildJob_Derivations(t *testing.T) {
	s := &Service{geo: &fakeGeocoder{loc: testLocation()}}

	wantClose := time.Now().Add(defaultPostingWindow)
	job, err := s.buildJob(context.Background(), validRequest(), wantClose)
	if err != nil {
		t.Fatalf("buildJob: %v", err)
	}

	if job.Slug != "senior-node-developer" {
		t.Errorf("slug = %q, want %q", job.Slug, "senior-node-developer")
	}
	if job.Latitude != 40.7128 || job.Longitude != -74.006 {
		t.Errorf("coordinates = (%v, %v), want the geocoded point", job.Latitude, job.Longitude)
	}
	if job.City != "New York" || job.Zipcode != "10001" {
		t.Errorf("locality = (%q, %q), want the geocoded parts", job.City, job.Zipcode)
	}
	if job.Positions != 1 {
		t.Errorf("positions = %d, want default 1", job.Positions)
	}

	if diff := job.LastDate.Sub(wantClose); diff < -time.Minute || diff > time.Minute {
		t.Errorf("lastDate = %v, want about %v", job.LastDate, wantClose)
	}
}

func TestBuildJob_ExplicitLastDateAndPositions(t *testing.T) {
	s := &Service{geo: &fakeGeocoder{loc: testLocation()}}

	lastDate := time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)
	req := validRequest()
	req.LastDate = &lastDate
	req.Positions = 3

	job, err := s.buildJob(context.Background(), req, time.Now().Add(defaultPostingWindow))
	if err != nil {
		t.Fatalf("buildJob: %v", err)
	}
	if !job.LastDate.Equal(lastDate) {
		t.Errorf("lastDate = %v, want the explicit %v", job.LastDate, lastDate)
	}
	if job.Positions != 3 {
		t.Errorf("positions = %d, want 3", job.Positions)
	}
}

func TestBuildJob_AbsentLastDateKeepsTheFallback(t *testing.T) {
	s := &Service{geo: &fakeGeocoder{loc: testLocation()}}

	// On update the fallback is the posting's current closing date: leaving
	// the field out of the request must not restart the window.
	existingClose := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	job, err := s.buildJob(context.Background(), validRequest(), existingClose)
	if err != nil {
		t.Fatalf("buildJob: %v", err)
	}
	if !job.LastDate.Equal(existingClose) {
		t.Errorf("lastDate = %v, want the preserved %v", job.LastDate, existingClose)
	}
}

func TestBuildJob_GeocoderFailureSurfaces(t *testing.T) {
	s := &Service{geo: &fakeGeocoder{err: apperror.NewExternalServiceError("provider down", nil)}}

	_, err := s.buildJob(context.Background(), validRequest(), time.Now().Add(defaultPostingWindow))
	if err == nil {
		t.Fatal("expected the geocoder failure to surface")
	}
	if appErr, ok := apperror.FromError(err); !ok || appErr.Type != apperror.ExternalServiceError {
		t.Errorf("error = %v, want an ExternalServiceError", err)
	}
}

func TestCheckOwnership(t *testing.T) {
	job := &Job{ID: 9, UserID: 1}

	tests := []struct {
		name    string
		user    *auth.User
		wantErr bool
	}{
		{"owner allowed", &auth.User{ID: 1, Role: auth.RoleEmployer}, false},
		{"admin allowed", &auth.User{ID: 2, Role: auth.RoleAdmin}, false},
		{"other employer rejected", &auth.User{ID: 2, Role: auth.RoleEmployer}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkOwnership(tt.user, job)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkOwnership error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if appErr, ok := apperror.FromError(err); !ok || appErr.StatusCode() != 403 {
					t.Errorf("error = %v, want status 403", err)
				}
			}
		})
	}
}

func TestMetersPerMile(t *testing.T) {
	// 10 miles is about 16 km; the radius predicate works in meters.
	if got := 10 * metersPerMile; got < 16000 || got > 16200 {
		t.Errorf("10 miles = %v meters, outside the expected range", got)
	}
}
