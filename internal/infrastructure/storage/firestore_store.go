package storage

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"
)

// Имена полей документов в Firestore
const (
	fieldStartInspectionTimer = "StartInspectionTimer"
	fieldInspectionStarted    = "InspectionStarted"
	fieldSerialNumber         = "serialNumber"
	fieldPanelStatus          = "panelStatus"
)

// FirestoreStore хранилище поверх коллекций users/{user}/farms/{farm}/panels/{panel}
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore подключается к проекту. credentialsFile может быть пустым,
// тогда используются Application Default Credentials.
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

// Close закрывает клиент Firestore.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) users() *firestore.CollectionRef {
	return s.client.Collection("users")
}

func (s *FirestoreStore) farms(userID string) *firestore.CollectionRef {
	return s.users().Doc(userID).Collection("farms")
}

func (s *FirestoreStore) panels(userID, farmID string) *firestore.CollectionRef {
	return s.farms(userID).Doc(farmID).Collection("panels")
}

// ScanUsers полностью обходит коллекцию users в порядке хранилища.
func (s *FirestoreStore) ScanUsers(ctx context.Context, visit func(entity.UserRecord) bool) error {
	iter := s.users().Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("iterate users: %w", err)
		}
		u := entity.UserRecord{
			ID:                   doc.Ref.ID,
			StartInspectionTimer: boolField(doc.Data(), fieldStartInspectionTimer),
		}
		if !visit(u) {
			return nil
		}
	}
}

func (s *FirestoreStore) FirstFarm(ctx context.Context, userID string) (*entity.FarmRecord, error) {
	iter := s.farms(userID).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query first farm: %w", err)
	}
	return &entity.FarmRecord{
		ID:                doc.Ref.ID,
		UserID:            userID,
		InspectionStarted: boolField(doc.Data(), fieldInspectionStarted),
	}, nil
}

func (s *FirestoreStore) FindPanels(ctx context.Context, userID, farmID, serial string) ([]entity.PanelRecord, error) {
	docs, err := s.panels(userID, farmID).Where(fieldSerialNumber, "==", serial).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query panels: %w", err)
	}
	panels := make([]entity.PanelRecord, 0, len(docs))
	for _, doc := range docs {
		data := doc.Data()
		sn, _ := data[fieldSerialNumber].(string)
		panels = append(panels, entity.PanelRecord{
			ID:           doc.Ref.ID,
			SerialNumber: sn,
			PanelStatus:  boolField(data, fieldPanelStatus),
		})
	}
	return panels, nil
}

func (s *FirestoreStore) SetPanelStatus(ctx context.Context, userID, farmID, panelID string, healthy bool) error {
	_, err := s.panels(userID, farmID).Doc(panelID).Update(ctx, []firestore.Update{
		{Path: fieldPanelStatus, Value: healthy},
	})
	return err
}

func (s *FirestoreStore) SetFarmInspectionStarted(ctx context.Context, userID, farmID string, started bool) error {
	_, err := s.farms(userID).Doc(farmID).Update(ctx, []firestore.Update{
		{Path: fieldInspectionStarted, Value: started},
	})
	return err
}

func (s *FirestoreStore) SetUserInspectionTimer(ctx context.Context, userID string, active bool) error {
	_, err := s.users().Doc(userID).Update(ctx, []firestore.Update{
		{Path: fieldStartInspectionTimer, Value: active},
	})
	return err
}

// boolField читает флаг так же, как его понимают клиенты фермы: любое "непустое" значение истинно.
func boolField(data map[string]interface{}, key string) bool {
	return truthy(data[key])
}

func truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	case []interface{}:
		return len(x) > 0
	case map[string]interface{}:
		return len(x) > 0
	default:
		return true
	}
}

var _ port.InspectionStore = (*FirestoreStore)(nil)
