package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/datatypes"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/domain/entity"
	"holasmile/cmd/internal/notify"
	"holasmile/cmd/internal/utils"
	"holasmile/cmd/internal/utils/apierror"
	"holasmile/cmd/internal/utils/validators"
)

var errStorage = errors.New("storage unavailable")

func identity(userID int, role auth.Role) *auth.Identity {
	return &auth.Identity{UserID: userID, Role: role}
}

func day(s string) datatypes.Date {
	t, err := utils.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return datatypes.Date(t)
}

func expectKind(t *testing.T, apierr apierror.ErrorResponse, kind apierror.Kind) {
	t.Helper()
	if apierr == nil {
		t.Fatalf("expected %s error, got success", kind)
	}
	if apierr.Kind() != kind {
		t.Fatalf("expected %s error, got %s (%s)", kind, apierr.Kind(), apierr.Error())
	}
}

func expectOK(t *testing.T, apierr apierror.ErrorResponse) {
	t.Helper()
	if apierr != nil {
		t.Fatalf("unexpected error: %s (%s)", apierr.Kind(), apierr.Error())
	}
}

// inbox records what the real Notifier dispatches.
type inbox struct {
	mu   sync.Mutex
	msgs []notify.Message
	fail bool
}

func (i *inbox) Dispatch(_ context.Context, msg notify.Message) error {
	if i.fail {
		return errors.New("smtp down")
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.msgs = append(i.msgs, msg)
	return nil
}

func (i *inbox) recipients() []int {
	i.mu.Lock()
	defer i.mu.Unlock()
	ids := make([]int, 0, len(i.msgs))
	for _, m := range i.msgs {
		ids = append(ids, m.RecipientUserID)
	}
	sort.Ints(ids)
	return ids
}

func newNotifier(box *inbox) *notify.Notifier {
	return notify.NewNotifier(box, 4, time.Second)
}

var testValidate = validators.New()

// fakeUsers serves users, roles and status updates.
type fakeUsers struct {
	users         map[int]*entity.User
	statusUpdates int
	roleErr       error
}

func newFakeUsers(users ...*entity.User) *fakeUsers {
	f := &fakeUsers{users: map[int]*entity.User{}}
	for _, u := range users {
		if u.Status == "" {
			u.Status = entity.UserActive
		}
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByID(_ context.Context, id int) (*entity.User, error) {
	return f.users[id], nil
}

func (f *fakeUsers) FindIDsByRole(_ context.Context, role string) ([]int, error) {
	if f.roleErr != nil {
		return nil, f.roleErr
	}
	var ids []int
	for _, u := range f.users {
		if u.Role == role && u.Status == entity.UserActive {
			ids = append(ids, u.ID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (f *fakeUsers) UpdateUserStatus(_ context.Context, user *entity.User) (bool, error) {
	f.statusUpdates++
	if _, ok := f.users[user.ID]; !ok {
		return false, nil
	}
	f.users[user.ID] = user
	return true, nil
}

type fakeDentists struct {
	byUser map[int]*entity.Dentist
}

func newFakeDentists(dentists ...*entity.Dentist) *fakeDentists {
	f := &fakeDentists{byUser: map[int]*entity.Dentist{}}
	for _, d := range dentists {
		f.byUser[d.UserID] = d
	}
	return f
}

func (f *fakeDentists) FindByUserID(_ context.Context, userID int) (*entity.Dentist, error) {
	return f.byUser[userID], nil
}

func (f *fakeDentists) FindByIDs(_ context.Context, ids []int) ([]*entity.Dentist, error) {
	var out []*entity.Dentist
	for _, id := range ids {
		for _, d := range f.byUser {
			if d.ID == id {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

type fakeSchedules struct {
	rows   map[int]*entity.Schedule
	nextID int
	calls  int
	writes int
}

func newFakeSchedules(rows ...*entity.Schedule) *fakeSchedules {
	f := &fakeSchedules{rows: map[int]*entity.Schedule{}, nextID: 100}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeSchedules) FindByID(_ context.Context, id int) (*entity.Schedule, error) {
	f.calls++
	r := f.rows[id]
	if r == nil || r.IsDeleted {
		return nil, nil
	}
	return r, nil
}

func (f *fakeSchedules) FindByIDs(_ context.Context, ids []int) ([]*entity.Schedule, error) {
	f.calls++
	var out []*entity.Schedule
	for _, id := range ids {
		if r := f.rows[id]; r != nil && !r.IsDeleted {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSchedules) FindByDentistID(_ context.Context, dentistID int) ([]*entity.Schedule, error) {
	f.calls++
	var out []*entity.Schedule
	for _, r := range f.rows {
		if r.DentistID == dentistID && !r.IsDeleted {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSchedules) CheckDuplicateSchedule(_ context.Context, dentistID int, workDate time.Time, shift entity.Shift, excludeID int) (*entity.Schedule, error) {
	f.calls++
	for _, r := range f.rows {
		if r.IsDeleted || r.ID == excludeID || r.DentistID != dentistID || r.Shift != shift {
			continue
		}
		if time.Time(r.WorkDate).Equal(utils.TruncateDay(workDate)) {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeSchedules) CreateAll(_ context.Context, evicted, created []*entity.Schedule) error {
	f.writes++
	for _, e := range evicted {
		e.IsDeleted = true
		f.rows[e.ID] = e
	}
	for _, c := range created {
		f.nextID++
		c.ID = f.nextID
		f.rows[c.ID] = c
	}
	return nil
}

func (f *fakeSchedules) Update(_ context.Context, schedule *entity.Schedule, evicted *entity.Schedule) (bool, error) {
	f.writes++
	if evicted != nil {
		evicted.IsDeleted = true
		f.rows[evicted.ID] = evicted
	}
	if _, ok := f.rows[schedule.ID]; !ok {
		return false, nil
	}
	f.rows[schedule.ID] = schedule
	return true, nil
}

func (f *fakeSchedules) UpdateStatuses(_ context.Context, schedules []*entity.Schedule) error {
	f.writes++
	for _, s := range schedules {
		f.rows[s.ID] = s
	}
	return nil
}

func (f *fakeSchedules) SoftDelete(_ context.Context, schedule *entity.Schedule) error {
	f.writes++
	schedule.IsDeleted = true
	f.rows[schedule.ID] = schedule
	return nil
}

type fakeSupplies struct {
	rows     map[int]*entity.Supply
	expenses []*entity.FinancialTransaction
	nextID   int
	calls    int
}

func newFakeSupplies(rows ...*entity.Supply) *fakeSupplies {
	f := &fakeSupplies{rows: map[int]*entity.Supply{}, nextID: 10}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeSupplies) FindByID(_ context.Context, id int) (*entity.Supply, error) {
	f.calls++
	return f.rows[id], nil
}

func (f *fakeSupplies) FindActive(_ context.Context) ([]*entity.Supply, error) {
	f.calls++
	var out []*entity.Supply
	for _, r := range f.rows {
		if !r.IsDeleted {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSupplies) FindDuplicate(_ context.Context, name string, price float64, expiry *time.Time) (*entity.Supply, error) {
	f.calls++
	for _, r := range f.rows {
		if r.IsDeleted || !strings.EqualFold(r.Name, name) || r.Price != price {
			continue
		}
		switch {
		case expiry == nil && r.ExpiryDate == nil:
			return r, nil
		case expiry != nil && r.ExpiryDate != nil && time.Time(*r.ExpiryDate).Equal(*expiry):
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeSupplies) CreateWithExpense(_ context.Context, supply *entity.Supply, expense *entity.FinancialTransaction) error {
	f.nextID++
	supply.ID = f.nextID
	expense.ID = f.nextID
	f.rows[supply.ID] = supply
	f.expenses = append(f.expenses, expense)
	return nil
}

func (f *fakeSupplies) Update(_ context.Context, supply *entity.Supply) (bool, error) {
	if _, ok := f.rows[supply.ID]; !ok {
		return false, nil
	}
	f.rows[supply.ID] = supply
	return true, nil
}

type fakeWarranties struct {
	cards         map[int]*entity.WarrantyCard
	patientByCard map[int]int
	calls         int
}

func (f *fakeWarranties) FindByID(_ context.Context, id int) (*entity.WarrantyCard, error) {
	f.calls++
	return f.cards[id], nil
}

func (f *fakeWarranties) FindPatientUserID(_ context.Context, cardID int) (int, error) {
	return f.patientByCard[cardID], nil
}

func (f *fakeWarranties) Update(_ context.Context, card *entity.WarrantyCard) (bool, error) {
	if _, ok := f.cards[card.ID]; !ok {
		return false, nil
	}
	f.cards[card.ID] = card
	return true, nil
}

type fakeAppointments struct {
	rows          map[int]*entity.Appointment
	patientUserID map[int]int
	calls         int
}

func (f *fakeAppointments) FindByID(_ context.Context, id int) (*entity.Appointment, error) {
	f.calls++
	return f.rows[id], nil
}

func (f *fakeAppointments) FindAll(_ context.Context) ([]*entity.Appointment, error) {
	f.calls++
	return f.filter(func(*entity.Appointment) bool { return true }), nil
}

func (f *fakeAppointments) FindByPatientID(_ context.Context, patientID int) ([]*entity.Appointment, error) {
	f.calls++
	return f.filter(func(a *entity.Appointment) bool { return a.PatientID == patientID }), nil
}

func (f *fakeAppointments) FindByDentistID(_ context.Context, dentistID int) ([]*entity.Appointment, error) {
	f.calls++
	return f.filter(func(a *entity.Appointment) bool { return a.DentistID == dentistID }), nil
}

func (f *fakeAppointments) FindPatientUserID(_ context.Context, appointmentID int) (int, error) {
	return f.patientUserID[appointmentID], nil
}

func (f *fakeAppointments) filter(keep func(*entity.Appointment) bool) []*entity.Appointment {
	var out []*entity.Appointment
	for _, a := range f.rows {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakePrescriptions struct {
	rows   map[int]*entity.Prescription
	nextID int
	err    error
}

func (f *fakePrescriptions) FindByID(_ context.Context, id int) (*entity.Prescription, error) {
	return f.rows[id], f.err
}

func (f *fakePrescriptions) FindByAppointmentID(_ context.Context, appointmentID int) (*entity.Prescription, error) {
	for _, p := range f.rows {
		if p.AppointmentID == appointmentID {
			return p, f.err
		}
	}
	return nil, f.err
}

func (f *fakePrescriptions) Create(_ context.Context, p *entity.Prescription) error {
	f.nextID++
	p.ID = f.nextID
	f.rows[p.ID] = p
	return nil
}

func (f *fakePrescriptions) Update(_ context.Context, p *entity.Prescription) (bool, error) {
	if _, ok := f.rows[p.ID]; !ok {
		return false, nil
	}
	f.rows[p.ID] = p
	return true, nil
}
