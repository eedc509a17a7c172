package matches

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	pgrepo "github.com/praytyushpande/crewlyx/internal/repo/postgres"
)

type matchStoreStub struct {
	records map[int64]pgrepo.MatchRecord
	listed  []pgrepo.MatchWithCounterpart
	deleted []int64
}

func newMatchStoreStub() *matchStoreStub {
	return &matchStoreStub{records: make(map[int64]pgrepo.MatchRecord)}
}

func (s *matchStoreStub) GetByID(_ context.Context, matchID int64) (pgrepo.MatchRecord, error) {
	record, ok := s.records[matchID]
	if !ok {
		return pgrepo.MatchRecord{}, pgrepo.ErrMatchNotFound
	}
	return record, nil
}

func (s *matchStoreStub) ListForUser(_ context.Context, _ int64, _, _ int) ([]pgrepo.MatchWithCounterpart, error) {
	return s.listed, nil
}

func (s *matchStoreStub) CountForUser(_ context.Context, _ int64) (int, error) {
	return len(s.listed), nil
}

func (s *matchStoreStub) DeleteByID(_ context.Context, _ pgx.Tx, matchID int64) (bool, error) {
	if _, ok := s.records[matchID]; !ok {
		return false, nil
	}
	delete(s.records, matchID)
	s.deleted = append(s.deleted, matchID)
	return true, nil
}

type messageStoreStub struct {
	deletedMatches []int64
	deleteCount    int64
}

func (s *messageStoreStub) DeleteByMatch(_ context.Context, _ pgx.Tx, matchID int64) (int64, error) {
	s.deletedMatches = append(s.deletedMatches, matchID)
	return s.deleteCount, nil
}

func newServiceForTest(matchStore *matchStoreStub, messageStore *messageStoreStub) *Service {
	return &Service{
		matchStore:   matchStore,
		messageStore: messageStore,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return fn(ctx, nil)
		},
	}
}

func TestGetEnforcesParticipation(t *testing.T) {
	store := newMatchStoreStub()
	store.records[5] = pgrepo.MatchRecord{ID: 5, UserAID: 1, UserBID: 2}
	svc := newServiceForTest(store, &messageStoreStub{})

	ctx := context.Background()
	match, err := svc.Get(ctx, 5, 2)
	if err != nil {
		t.Fatalf("participant get: %v", err)
	}
	if match.ID != 5 {
		t.Fatalf("unexpected match: %+v", match)
	}

	if _, err := svc.Get(ctx, 5, 3); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("outsider should be denied, got err=%v", err)
	}
	if _, err := svc.Get(ctx, 99, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing match should be not found, got err=%v", err)
	}
}

func TestListMapsLastMessage(t *testing.T) {
	sentAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	store := newMatchStoreStub()
	store.listed = []pgrepo.MatchWithCounterpart{
		{
			MatchRecord: pgrepo.MatchRecord{
				ID:                  5,
				UserAID:             1,
				UserBID:             2,
				LastMessageContent:  "see you at the hackathon",
				LastMessageSenderID: 2,
				LastMessageAt:       &sentAt,
				MessageCount:        3,
			},
			CounterpartID:   2,
			CounterpartName: "Arjun",
		},
	}
	svc := newServiceForTest(store, &messageStoreStub{})

	page, err := svc.List(context.Background(), 1, 0, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}

	item := page.Items[0]
	if item.User.ID != 2 || item.User.Name != "Arjun" {
		t.Fatalf("counterpart not mapped: %+v", item.User)
	}
	if item.Match.LastMessage == nil || item.Match.LastMessage.Content != "see you at the hackathon" {
		t.Fatalf("last message not mapped: %+v", item.Match.LastMessage)
	}
	if item.Match.MessageCount != 3 {
		t.Fatalf("message count not mapped: %+v", item.Match)
	}
}

func TestUnmatchDeletesConversation(t *testing.T) {
	matchStore := newMatchStoreStub()
	matchStore.records[5] = pgrepo.MatchRecord{ID: 5, UserAID: 1, UserBID: 2}
	messageStore := &messageStoreStub{deleteCount: 7}
	svc := newServiceForTest(matchStore, messageStore)

	ctx := context.Background()
	if err := svc.Unmatch(ctx, 5, 3); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("outsider unmatch should be denied, got err=%v", err)
	}

	if err := svc.Unmatch(ctx, 5, 1); err != nil {
		t.Fatalf("unmatch: %v", err)
	}
	if len(messageStore.deletedMatches) != 1 || messageStore.deletedMatches[0] != 5 {
		t.Fatalf("messages not cascade deleted: %v", messageStore.deletedMatches)
	}
	if len(matchStore.deleted) != 1 || matchStore.deleted[0] != 5 {
		t.Fatalf("match not deleted: %v", matchStore.deleted)
	}

	if err := svc.Unmatch(ctx, 5, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second unmatch should be not found, got err=%v", err)
	}
}
