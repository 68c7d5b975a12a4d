package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

const collectionTickets = "support_tickets"

type TicketRepository struct {
	col *mongo.Collection
}

func NewTicketRepository(db *mongo.Database) *TicketRepository {
	return &TicketRepository{col: db.Collection(collectionTickets)}
}

func (r *TicketRepository) Create(ctx context.Context, t *domain.SupportTicket) (*domain.SupportTicket, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	t.ID = newID()
	if _, err := r.col.InsertOne(ctx, t); err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}
	return t, nil
}

// FindByTicketID looks a ticket up by its human-facing id (TK-...).
func (r *TicketRepository) FindByTicketID(ctx context.Context, ticketID string) (*domain.SupportTicket, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.SupportTicket
	if err := r.col.FindOne(ctx, bson.M{"ticketId": ticketID}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	return &t, nil
}

func (r *TicketRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.SupportTicket, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"customerId": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer cur.Close(ctx)

	return decodeTickets(ctx, cur)
}

func (r *TicketRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.SupportTicket, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		query["$or"] = bson.A{
			bson.M{"ticketId": bson.M{"$regex": filter.Search, "$options": "i"}},
			bson.M{"subject": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	defer cur.Close(ctx)

	tickets, err := decodeTickets(ctx, cur)
	return tickets, total, err
}

func (r *TicketRepository) Update(ctx context.Context, t *domain.SupportTicket) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// AppendMessage pushes a message onto the ticket thread atomically.
func (r *TicketRepository) AppendMessage(ctx context.Context, ticketID string, msg domain.TicketMessage) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"ticketId": ticketID},
		bson.M{
			"$push": bson.M{"messages": msg},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("append ticket message: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// CountForYear counts tickets created in the given calendar year, which feeds
// sequential ticket id generation.
func (r *TicketRepository) CountForYear(ctx context.Context, year int) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return r.col.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": start, "$lt": end}})
}

func (r *TicketRepository) CountByStatus(ctx context.Context, status domain.TicketStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"status": status})
}

// EnsureIndexes creates the unique ticketId index.
func (r *TicketRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "ticketId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func decodeTickets(ctx context.Context, cur *mongo.Cursor) ([]*domain.SupportTicket, error) {
	var tickets []*domain.SupportTicket
	for cur.Next(ctx) {
		var t domain.SupportTicket
		if err := cur.Decode(&t); err != nil {
			return nil, fmt.Errorf("decode ticket: %w", err)
		}
		tickets = append(tickets, &t)
	}
	return tickets, cur.Err()
}
