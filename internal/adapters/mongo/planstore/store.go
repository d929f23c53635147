package planstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/planstore"
)

// CollectionName is the default collection plans are stored in.
const CollectionName = "plans"

// Store is a MongoDB implementation of planstore.Store. Each plan is one
// document with its stub items embedded.
type Store struct {
	coll *mongo.Collection
}

var _ planstore.Store = (*Store)(nil)

func NewStore(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// EnsureIndexes creates the owner listing index. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if s.coll == nil {
		return errors.New("nil mongo collection")
	}
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}},
	})
	return err
}

type planDoc struct {
	ID        string     `bson:"_id"`
	OwnerID   string     `bson:"ownerId"`
	Title     string     `bson:"title"`
	GroupBy   string     `bson:"groupBy,omitempty"`
	Items     []itemDoc  `bson:"items"`
	ItemCount int        `bson:"itemCount"`
	StartDate *time.Time `bson:"startDate,omitempty"`
	EndDate   *time.Time `bson:"endDate,omitempty"`
	CreatedAt time.Time  `bson:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt"`
}

type itemDoc struct {
	Type              string     `bson:"type"`
	EntityID          string     `bson:"entityId"`
	Name              string     `bson:"name"`
	CityIDForGrouping string     `bson:"cityIdForGrouping"`
	Date              *time.Time `bson:"date,omitempty"`
	Time              *string    `bson:"time,omitempty"`
	OrderIndex        int        `bson:"orderIndex"`
	Pinned            bool       `bson:"pinned"`
}

func (s *Store) Insert(ctx context.Context, owner domain.OwnerID, rec planstore.Record) (domain.PlanID, error) {
	if s.coll == nil {
		return "", errors.New("nil mongo collection")
	}
	if rec.ID == "" {
		return "", errors.New("plan id is required")
	}
	doc := toDoc(owner, rec)
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", planstore.ErrAlreadyExists
		}
		return "", err
	}
	return rec.ID, nil
}

func (s *Store) Update(ctx context.Context, id domain.PlanID, owner domain.OwnerID, rec planstore.Record) error {
	if s.coll == nil {
		return errors.New("nil mongo collection")
	}
	doc := toDoc(owner, rec)
	set := bson.M{
		"title":     doc.Title,
		"groupBy":   doc.GroupBy,
		"items":     doc.Items,
		"itemCount": doc.ItemCount,
		"updatedAt": doc.UpdatedAt,
	}
	unset := bson.M{}
	if doc.StartDate != nil {
		set["startDate"] = doc.StartDate
	} else {
		unset["startDate"] = ""
	}
	if doc.EndDate != nil {
		set["endDate"] = doc.EndDate
	} else {
		unset["endDate"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": string(id), "ownerId": string(owner)}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return planstore.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, owner domain.OwnerID) ([]planstore.Summary, error) {
	if s.coll == nil {
		return nil, errors.New("nil mongo collection")
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"items": 0})
	cur, err := s.coll.Find(ctx, bson.M{"ownerId": string(owner)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]planstore.Summary, 0)
	for cur.Next(ctx) {
		var d planDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, planstore.Summary{
			ID:        domain.PlanID(d.ID),
			Title:     d.Title,
			StartDate: utcPtr(d.StartDate),
			EndDate:   utcPtr(d.EndDate),
			ItemCount: d.ItemCount,
			CreatedAt: d.CreatedAt.UTC(),
			UpdatedAt: d.UpdatedAt.UTC(),
		})
	}
	return out, cur.Err()
}

func (s *Store) Delete(ctx context.Context, id domain.PlanID, owner domain.OwnerID) error {
	if s.coll == nil {
		return errors.New("nil mongo collection")
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": string(id), "ownerId": string(owner)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return planstore.ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id domain.PlanID) (planstore.Record, error) {
	if s.coll == nil {
		return planstore.Record{}, errors.New("nil mongo collection")
	}
	var d planDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return planstore.Record{}, planstore.ErrNotFound
		}
		return planstore.Record{}, err
	}
	return fromDoc(d), nil
}

func toDoc(owner domain.OwnerID, rec planstore.Record) planDoc {
	items := make([]itemDoc, 0, len(rec.Items))
	for _, it := range rec.Items {
		items = append(items, itemDoc{
			Type:              string(it.Type),
			EntityID:          string(it.Data.ID),
			Name:              it.Data.Name,
			CityIDForGrouping: string(it.CityIDForGrouping),
			Date:              domain.DateOnlyPtr(it.Date),
			Time:              domain.CloneStringPtr(it.Time),
			OrderIndex:        it.OrderIndex,
			Pinned:            it.Pinned,
		})
	}
	return planDoc{
		ID:        string(rec.ID),
		OwnerID:   string(owner),
		Title:     rec.Title,
		GroupBy:   string(rec.GroupBy.OrDefault()),
		Items:     items,
		ItemCount: len(items),
		StartDate: domain.DateOnlyPtr(rec.StartDate),
		EndDate:   domain.DateOnlyPtr(rec.EndDate),
		CreatedAt: rec.CreatedAt.UTC(),
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
}

func fromDoc(d planDoc) planstore.Record {
	items := make([]planstore.StubItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, planstore.StubItem{
			Type:              domain.EntityKind(it.Type),
			Data:              planstore.Stub{ID: domain.EntityID(it.EntityID), Name: it.Name},
			CityIDForGrouping: domain.EntityID(it.CityIDForGrouping),
			Date:              utcPtr(it.Date),
			Time:              it.Time,
			OrderIndex:        it.OrderIndex,
			Pinned:            it.Pinned,
		})
	}
	return planstore.Record{
		ID:        domain.PlanID(d.ID),
		OwnerID:   domain.OwnerID(d.OwnerID),
		Title:     d.Title,
		GroupBy:   domain.GroupBy(d.GroupBy).OrDefault(),
		Items:     items,
		StartDate: utcPtr(d.StartDate),
		EndDate:   utcPtr(d.EndDate),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
