//go:build integration

package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/avandyck/shepherd/internal/config"
	"github.com/avandyck/shepherd/internal/models"
)

var testDB *Surreal

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := container.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	cfg := config.Config{
		SurrealDBURL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		SurrealDBNamespace: "test",
		SurrealDBDatabase:  "test",
		SurrealDBUser:      "root",
		SurrealDBPass:      "root",
		SurrealDBAuthLevel: "root",
	}
	testDB, err = NewSurreal(ctx, cfg, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := testDB.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to init schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func wipe(t *testing.T) {
	t.Helper()
	if err := testDB.WipeData(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestSurrealEntityRoundTrip(t *testing.T) {
	wipe(t)
	ctx := context.Background()

	ref := "pco-123"
	e := models.Entity{
		ID:             "e1",
		TenantID:       "t1",
		DisplayName:    "Sarah Johnson",
		NormalizedName: "sarah johnson",
		ExternalRef:    &ref,
		GroupTag:       "vocals",
		Active:         true,
		CreatedAt:      time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := testDB.PutEntity(ctx, e); err != nil {
		t.Fatal(err)
	}

	got, err := testDB.GetEntity(ctx, "t1", "e1")
	if err != nil {
		t.Fatal(err)
	}
	if got.DisplayName != e.DisplayName || got.NormalizedName != e.NormalizedName {
		t.Errorf("round trip = %+v", got)
	}
	if got.ExternalRef == nil || *got.ExternalRef != ref {
		t.Errorf("external ref = %v", got.ExternalRef)
	}

	if _, err := testDB.GetEntity(ctx, "other", "e1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-tenant get = %v, want ErrNotFound", err)
	}
}

func TestSurrealEvidenceRoundTrip(t *testing.T) {
	wipe(t)
	ctx := context.Background()

	rec := models.EvidenceRecord{
		ID:        "ev1",
		TenantID:  "t1",
		AuthorRef: "leader-1",
		RawText:   "Talked with Sarah about her mom's surgery",
		Summary:   "Sarah's mom has surgery coming up",
		Facts: models.Facts{
			PrayerRequests: []string{"mom's surgery"},
			FollowUpNeeded: true,
			Confidence:     0.9,
		},
		Embedding:       []float32{0.1, 0.2, 0.3},
		LinkedEntityIDs: []string{"e1"},
		CreatedAt:       time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := testDB.PutEvidence(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := testDB.GetEvidence(ctx, "t1", "ev1")
	if err != nil {
		t.Fatal(err)
	}
	if got.RawText != rec.RawText || len(got.Facts.PrayerRequests) != 1 {
		t.Errorf("round trip = %+v", got)
	}
	if len(got.Embedding) != 3 {
		t.Errorf("embedding = %v", got.Embedding)
	}

	if err := testDB.AttachCorrection(ctx, "t1", "ev1", "It was her aunt, not her mom"); err != nil {
		t.Fatal(err)
	}
	got, _ = testDB.GetEvidence(ctx, "t1", "ev1")
	if got.Correction == "" || got.RawText != rec.RawText {
		t.Errorf("correction attach changed the wrong fields: %+v", got)
	}
}

func TestSurrealContextRoundTrip(t *testing.T) {
	wipe(t)
	ctx := context.Background()

	cc := models.ConversationContext{
		SessionID: "s1",
		TenantID:  "t1",
		Pending: &models.PendingOp{
			Kind:         models.PendingFollowUpDetails,
			OriginalText: "I need to follow up with John",
			Asks:         1,
			FollowUp:     &models.FollowUpDraft{EntityName: "John", Topic: "job situation"},
		},
		ShownEvidenceIDs:   []string{"ev1", "ev2"},
		DiscussedEntityIDs: []string{"e1"},
		History: []models.Turn{
			{Role: "user", Content: "I need to follow up with John"},
			{Role: "assistant", Content: "What about?"},
		},
		TurnCount: 2,
	}
	if err := testDB.SaveContext(ctx, cc); err != nil {
		t.Fatal(err)
	}

	got, err := testDB.GetContext(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Pending == nil || got.Pending.Kind != models.PendingFollowUpDetails {
		t.Fatalf("pending = %+v", got.Pending)
	}
	if got.Pending.FollowUp == nil || got.Pending.FollowUp.Topic != "job situation" {
		t.Errorf("follow-up draft = %+v", got.Pending.FollowUp)
	}
	if len(got.History) != 2 || got.TurnCount != 2 {
		t.Errorf("history round trip = %+v", got)
	}

	// Save again with the pending op cleared: upsert must replace.
	cc.Pending = nil
	cc.TurnCount = 3
	if err := testDB.SaveContext(ctx, cc); err != nil {
		t.Fatal(err)
	}
	got, _ = testDB.GetContext(ctx, "s1")
	if got.Pending != nil || got.TurnCount != 3 {
		t.Errorf("context not replaced: %+v", got)
	}
}

func TestSurrealFollowUpStatus(t *testing.T) {
	wipe(t)
	ctx := context.Background()

	f := models.FollowUp{
		ID:        "f1",
		TenantID:  "t1",
		EntityID:  "e1",
		Topic:     "job situation",
		DueDate:   time.Now().UTC().AddDate(0, 0, 7).Truncate(time.Millisecond),
		Status:    models.FollowUpPending,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := testDB.PutFollowUp(ctx, f); err != nil {
		t.Fatal(err)
	}

	pending, err := testDB.ListFollowUps(ctx, "t1", models.FollowUpPending)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %+v", pending)
	}

	if err := testDB.SetFollowUpStatus(ctx, "t1", "f1", models.FollowUpDone); err != nil {
		t.Fatal(err)
	}
	pending, _ = testDB.ListFollowUps(ctx, "t1", models.FollowUpPending)
	if len(pending) != 0 {
		t.Errorf("still pending after completion: %+v", pending)
	}

	if err := testDB.SetFollowUpStatus(ctx, "other", "f1", models.FollowUpDone); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-tenant status change = %v, want ErrNotFound", err)
	}
}
