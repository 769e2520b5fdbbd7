package repository

import (
	"errors"
	"os"
	"testing"
	"time"

	calendardomain "meeting-portal-backend/internal/calendar/domain"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.AutoMigrate(&calendardomain.TokenRecord{}, &calendardomain.Meeting{}, &calendardomain.SyncRun{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func remoteID(s string) *string { return &s }

func TestTokenStore_UpsertAndDelete(t *testing.T) {
	store := NewTokenStore(openTestDB(t))
	userID := uuid.New().String()
	t.Cleanup(func() { _ = store.Delete(userID) })

	if rec, err := store.Get(userID); err != nil || rec != nil {
		t.Fatalf("Get before save = %v, %v", rec, err)
	}

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	if err := store.Save(&calendardomain.TokenRecord{UserID: userID, AccessToken: "a1", RefreshToken: "r1", ExpiresAt: expires}); err != nil {
		t.Fatal(err)
	}
	// second save overwrites
	if err := store.Save(&calendardomain.TokenRecord{UserID: userID, AccessToken: "a2", RefreshToken: "r1", ExpiresAt: expires}); err != nil {
		t.Fatal(err)
	}

	rec, err := store.Get(userID)
	if err != nil || rec == nil {
		t.Fatalf("Get = %v, %v", rec, err)
	}
	if rec.AccessToken != "a2" || !rec.ExpiresAt.Equal(expires) {
		t.Errorf("record = %+v", rec)
	}

	if err := store.Delete(userID); err != nil {
		t.Fatal(err)
	}
	if rec, _ := store.Get(userID); rec != nil {
		t.Error("record survived Delete")
	}
}

func TestMeetingRepository_RemoteUniqueness(t *testing.T) {
	db := openTestDB(t)
	repo := NewMeetingRepository(db)
	userID := uuid.New().String()
	t.Cleanup(func() { db.Where("user_id = ?", userID).Delete(&calendardomain.Meeting{}) })

	start := time.Now().Add(24 * time.Hour)
	newMeeting := func(remote *string) *calendardomain.Meeting {
		return &calendardomain.Meeting{
			UserID:        userID,
			Title:         "Standup",
			StartTime:     start,
			EndTime:       start.Add(15 * time.Minute),
			RemoteEventID: remote,
			MeetingType:   calendardomain.MeetingTypePhysical,
			Status:        calendardomain.MeetingStatusScheduled,
		}
	}

	if err := repo.Create(newMeeting(remoteID("evt-1"))); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(newMeeting(remoteID("evt-1"))); !errors.Is(err, ErrDuplicateRemoteEvent) {
		t.Errorf("duplicate import err = %v", err)
	}

	// manual meetings have no remote id and never collide
	for i := 0; i < 2; i++ {
		if err := repo.Create(newMeeting(nil)); err != nil {
			t.Fatalf("manual meeting %d: %v", i, err)
		}
	}

	ids, err := repo.ExistingRemoteIDs(userID)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ids["evt-1"]; !ok || len(ids) != 1 {
		t.Errorf("ids = %v", ids)
	}

	meetings, total, err := repo.FindByUserID(userID, nil, nil, 10, 0)
	if err != nil || total != 3 || len(meetings) != 3 {
		t.Fatalf("FindByUserID = %d/%d, %v", len(meetings), total, err)
	}
}

func TestSyncRunRepository_LastRun(t *testing.T) {
	db := openTestDB(t)
	repo := NewSyncRunRepository(db)
	userID := uuid.New().String()
	t.Cleanup(func() { db.Where("user_id = ?", userID).Delete(&calendardomain.SyncRun{}) })

	base := time.Now().UTC().Truncate(time.Second)
	for i, trigger := range []calendardomain.Trigger{calendardomain.TriggerAutomatic, calendardomain.TriggerManual, calendardomain.TriggerAutomatic} {
		run := &calendardomain.SyncRun{UserID: userID, Trigger: trigger, StartedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.Create(run); err != nil {
			t.Fatal(err)
		}
		finished := run.StartedAt.Add(time.Second)
		run.FinishedAt = &finished
		run.SyncedCount = i
		if err := repo.Finish(run); err != nil {
			t.Fatal(err)
		}
	}

	last, err := repo.LastRun(userID, calendardomain.TriggerAutomatic)
	if err != nil || last == nil {
		t.Fatalf("LastRun = %v, %v", last, err)
	}
	if !last.StartedAt.Equal(base.Add(2*time.Minute)) || last.SyncedCount != 2 || !last.Succeeded() {
		t.Errorf("last automatic run = %+v", last)
	}

	runs, err := repo.ListByUserID(userID, 2)
	if err != nil || len(runs) != 2 {
		t.Fatalf("ListByUserID = %d, %v", len(runs), err)
	}
	if runs[0].Trigger != calendardomain.TriggerAutomatic || runs[1].Trigger != calendardomain.TriggerManual {
		t.Errorf("order = %s, %s", runs[0].Trigger, runs[1].Trigger)
	}
}
