package service

import (
	"clinicbook/cmd/internal/utils/apierror"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func doctorRequest(email string) *DoctorRequest {
	home := 80.0
	return &DoctorRequest{
		Name:           "Dr. Grey",
		Email:          email,
		Specialization: "Surgery",
		ClinicFee:      60,
		HomeVisitFee:   &home,
		Location:       "Seattle",
		AvailableFrom:  "09:00",
		AvailableTo:    "12:00",
		AvailableDays:  []int{1, 3, 5},
	}
}

func TestCreateDoctor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, apierr := f.doctorSvc.CreateDoctor(ctx, doctorRequest("Grey@Clinic.test"))
	require.Nil(t, apierr)
	require.Equal(t, "grey@clinic.test", doc.Email)
	require.Equal(t, []string{
		"09:00-09:30", "09:30-10:00", "10:00-10:30",
		"10:30-11:00", "11:00-11:30", "11:30-12:00",
	}, doc.TimeSlots)

	_, apierr = f.doctorSvc.CreateDoctor(ctx, doctorRequest("grey@clinic.test"))
	require.Equal(t, apierror.DoctorEmailTakenError, apierr)

	bad := doctorRequest("late@clinic.test")
	bad.AvailableFrom, bad.AvailableTo = "15:00", "10:00"
	_, apierr = f.doctorSvc.CreateDoctor(ctx, bad)
	require.NotNil(t, apierr)
	require.Equal(t, http.StatusBadRequest, apierr.Code())

	bad = doctorRequest("sunday@clinic.test")
	bad.AvailableDays = []int{0, 7}
	_, apierr = f.doctorSvc.CreateDoctor(ctx, bad)
	require.NotNil(t, apierr)
	require.Equal(t, apierror.KindInvalidInput, apierr.Kind())

	docs, apierr := f.doctorSvc.GetDoctors(ctx)
	require.Nil(t, apierr)
	require.Len(t, docs, 1)
}

func TestUpdateDoctor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	grey, apierr := f.doctorSvc.CreateDoctor(ctx, doctorRequest("grey@clinic.test"))
	require.Nil(t, apierr)
	_, apierr = f.doctorSvc.CreateDoctor(ctx, doctorRequest("shepherd@clinic.test"))
	require.Nil(t, apierr)

	req := doctorRequest("grey@clinic.test")
	req.AvailableTo = "17:00"
	req.HomeVisitFee = nil
	updated, apierr := f.doctorSvc.UpdateDoctor(ctx, grey.ID, req)
	require.Nil(t, apierr)
	require.Len(t, updated.TimeSlots, 12)
	require.Nil(t, updated.HomeVisitFee)

	_, apierr = f.doctorSvc.UpdateDoctor(ctx, grey.ID, doctorRequest("shepherd@clinic.test"))
	require.Equal(t, apierror.DoctorEmailTakenError, apierr)

	_, apierr = f.doctorSvc.UpdateDoctor(ctx, "missing", doctorRequest("new@clinic.test"))
	require.Equal(t, apierror.DoctorNotFoundError, apierr)

	got, apierr := f.doctorSvc.GetDoctor(ctx, grey.ID)
	require.Nil(t, apierr)
	require.Equal(t, "17:00", got.AvailableTo)
}

func TestRemovedDoctorEmailStaysReserved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	grey, apierr := f.doctorSvc.CreateDoctor(ctx, doctorRequest("grey@clinic.test"))
	require.Nil(t, apierr)
	require.Nil(t, f.doctorSvc.DeleteDoctor(ctx, grey.ID))

	docs, apierr := f.doctorSvc.GetDoctors(ctx)
	require.Nil(t, apierr)
	require.Empty(t, docs)

	_, apierr = f.doctorSvc.CreateDoctor(ctx, doctorRequest("grey@clinic.test"))
	require.Equal(t, apierror.DoctorEmailTakenError, apierr)
}

func TestLocations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, apierr := f.locSvc.CreateLocation(ctx, &LocationRequest{Name: "North", Address: " "})
	require.NotNil(t, apierr)
	require.Equal(t, apierror.KindInvalidInput, apierr.Kind())

	loc, apierr := f.locSvc.CreateLocation(ctx, &LocationRequest{Name: " North ", Address: "1 Main St", City: "Springfield"})
	require.Nil(t, apierr)
	require.Equal(t, "North", loc.Name)

	locs, apierr := f.locSvc.GetLocations(ctx)
	require.Nil(t, apierr)
	require.Len(t, locs, 1)
	require.Equal(t, loc.ID, locs[0].ID)
}
