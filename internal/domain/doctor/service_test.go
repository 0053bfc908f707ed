package doctor

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	items map[uuid.UUID]*Doctor
	err   error
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Doctor)}
}

func (m *mockRepo) Create(_ context.Context, d *Doctor) error {
	for _, existing := range m.items {
		if existing.Name == d.Name {
			return ErrDuplicate
		}
	}
	d.ID = uuid.New()
	m.items[d.ID] = d
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) GetByName(_ context.Context, name string) (*Doctor, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, d := range m.items {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, d *Doctor) error {
	if _, ok := m.items[d.ID]; !ok {
		return ErrNotFound
	}
	m.items[d.ID] = d
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]*Doctor, error) {
	out := []*Doctor{}
	for _, d := range m.items {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func TestService_Create(t *testing.T) {
	svc := NewService(newMockRepo())
	d := &Doctor{Name: "  Dr. Khan ", ClinicName: " City Clinic ", RoutinePercentage: 20, SpecialPercentage: 10}

	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.Name != "Dr. Khan" || d.ClinicName != "City Clinic" {
		t.Errorf("expected trimmed values, got %q %q", d.Name, d.ClinicName)
	}
}

func TestService_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		d    Doctor
	}{
		{"missing name", Doctor{}},
		{"reserved self", Doctor{Name: "self"}},
		{"routine over 100", Doctor{Name: "A", RoutinePercentage: 101}},
		{"negative special", Doctor{Name: "A", SpecialPercentage: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.d
			if err := NewService(newMockRepo()).Create(context.Background(), &d); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestService_Rates(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	svc.Create(context.Background(), &Doctor{Name: "Dr. Ali", RoutinePercentage: 25, SpecialPercentage: 12.5})

	routine, special, err := svc.Rates(context.Background(), "Dr. Ali")
	if err != nil || routine != 25 || special != 12.5 {
		t.Errorf("got %v %v %v", routine, special, err)
	}

	routine, special, err = svc.Rates(context.Background(), "Dr. Unknown")
	if err != nil || routine != 0 || special != 0 {
		t.Errorf("unknown doctor should get zero rates, got %v %v %v", routine, special, err)
	}

	repo.err = errors.New("connection reset")
	if _, _, err := svc.Rates(context.Background(), "Dr. Ali"); err == nil {
		t.Error("expected repository error to surface")
	}
}

func TestService_UpdateNotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	err := svc.Update(context.Background(), &Doctor{ID: uuid.New(), Name: "Dr. Ghost"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
