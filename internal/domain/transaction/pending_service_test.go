package transaction

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type MockPendingRepo struct {
	AppendFunc func(ctx context.Context, rec *Record) error
	ListFunc   func(ctx context.Context) ([]*Record, error)
	RemoveFunc func(ctx context.Context, id string) (*Record, error)
	ClearFunc  func(ctx context.Context) (int, error)
}

func (m *MockPendingRepo) Append(ctx context.Context, rec *Record) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, rec)
	}
	return nil
}

func (m *MockPendingRepo) List(ctx context.Context) ([]*Record, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockPendingRepo) Remove(ctx context.Context, id string) (*Record, error) {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, id)
	}
	return nil, ErrPendingNotFound
}

func (m *MockPendingRepo) Clear(ctx context.Context) (int, error) {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx)
	}
	return 0, nil
}

type MockCanceller struct {
	Cancelled []int32
	Err       error
}

func (m *MockCanceller) CancelNotification(ctx context.Context, notificationID int32) error {
	m.Cancelled = append(m.Cancelled, notificationID)
	return m.Err
}

func TestPendingService_Remove(t *testing.T) {
	tests := []struct {
		name          string
		id            string
		removeFunc    func(ctx context.Context, id string) (*Record, error)
		cancelErr     error
		wantErr       error
		wantCancelled int
	}{
		{
			name: "removes and cancels notification",
			id:   "a",
			removeFunc: func(ctx context.Context, id string) (*Record, error) {
				return &Record{ID: id, NotificationID: 77}, nil
			},
			wantCancelled: 1,
		},
		{
			name: "cancel failure is not an error",
			id:   "a",
			removeFunc: func(ctx context.Context, id string) (*Record, error) {
				return &Record{ID: id, NotificationID: 77}, nil
			},
			cancelErr:     errors.New("fcm down"),
			wantCancelled: 1,
		},
		{
			name: "not found",
			id:   "missing",
			removeFunc: func(ctx context.Context, id string) (*Record, error) {
				return nil, ErrPendingNotFound
			},
			wantErr: ErrPendingNotFound,
		},
		{
			name:    "empty id",
			id:      "",
			wantErr: ErrMissingID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canceller := &MockCanceller{Err: tt.cancelErr}
			svc := NewPendingService(&MockPendingRepo{RemoveFunc: tt.removeFunc}, canceller, zerolog.Nop())

			_, err := svc.Remove(context.Background(), tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Remove() error = %v, want %v", err, tt.wantErr)
			}
			if len(canceller.Cancelled) != tt.wantCancelled {
				t.Errorf("cancelled = %d, want %d", len(canceller.Cancelled), tt.wantCancelled)
			}
			if tt.wantCancelled > 0 && canceller.Cancelled[0] != 77 {
				t.Errorf("cancelled notification = %d, want 77", canceller.Cancelled[0])
			}
		})
	}
}

func TestPendingService_Restore(t *testing.T) {
	existing := []*Record{{ID: "a", Type: TypeExpense, Amount: 1}}

	var appended []*Record
	repo := &MockPendingRepo{
		ListFunc: func(ctx context.Context) ([]*Record, error) { return existing, nil },
		AppendFunc: func(ctx context.Context, rec *Record) error {
			appended = append(appended, rec)
			return nil
		},
	}
	svc := NewPendingService(repo, nil, zerolog.Nop())

	if err := svc.Restore(context.Background(), &Record{ID: "a", Type: TypeExpense, Amount: 1}); err != nil {
		t.Fatalf("Restore(existing) error = %v", err)
	}
	if len(appended) != 0 {
		t.Error("Restore of an already pending record should not append")
	}

	if err := svc.Restore(context.Background(), &Record{ID: "b", Type: TypeIncome, Amount: 2}); err != nil {
		t.Fatalf("Restore(new) error = %v", err)
	}
	if len(appended) != 1 || appended[0].ID != "b" {
		t.Errorf("appended = %v, want [b]", ids(appended))
	}

	if err := svc.Restore(context.Background(), &Record{ID: "c", Type: TypeIncome}); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Restore(invalid) error = %v, want %v", err, ErrInvalidAmount)
	}
}

func TestPendingService_Clear(t *testing.T) {
	svc := NewPendingService(&MockPendingRepo{
		ClearFunc: func(ctx context.Context) (int, error) { return 3, nil },
	}, nil, zerolog.Nop())

	n, err := svc.Clear(context.Background())
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
}

func TestPendingService_ClearCancelsNotifications(t *testing.T) {
	records := []*Record{
		{ID: "a", NotificationID: 11},
		{ID: "b", NotificationID: 22},
	}

	tests := []struct {
		name      string
		cancelErr error
		listErr   error
		wantErr   bool
		wantIDs   []int32
	}{
		{name: "cancels every record", wantIDs: []int32{11, 22}},
		{name: "cancel failure is not an error", cancelErr: errors.New("fcm down"), wantIDs: []int32{11, 22}},
		{name: "list failure aborts before clearing", listErr: errors.New("db down"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleared := false
			repo := &MockPendingRepo{
				ListFunc: func(ctx context.Context) ([]*Record, error) {
					if tt.listErr != nil {
						return nil, tt.listErr
					}
					return records, nil
				},
				ClearFunc: func(ctx context.Context) (int, error) {
					cleared = true
					return len(records), nil
				},
			}
			canceller := &MockCanceller{Err: tt.cancelErr}
			svc := NewPendingService(repo, canceller, zerolog.Nop())

			n, err := svc.Clear(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Clear() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if cleared {
					t.Error("list failed but the pending list was cleared")
				}
				return
			}
			if n != 2 {
				t.Errorf("Clear() = %d, want 2", n)
			}
			if len(canceller.Cancelled) != len(tt.wantIDs) {
				t.Fatalf("cancelled %v, want %v", canceller.Cancelled, tt.wantIDs)
			}
			for i, id := range tt.wantIDs {
				if canceller.Cancelled[i] != id {
					t.Errorf("cancelled[%d] = %d, want %d", i, canceller.Cancelled[i], id)
				}
			}
		})
	}
}
