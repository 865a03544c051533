package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/interfaces"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/repository"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// requestDoc is the Firestore document representation of model.Request.
// ResponderIDs is a native array field so insertion order survives the
// round trip.
type requestDoc struct {
	ID              string    `firestore:"ID"`
	External        bool      `firestore:"External"`
	RequesterID     string    `firestore:"RequesterID"`
	RequesterName   string    `firestore:"RequesterName"`
	Location        string    `firestore:"Location"`
	Details         string    `firestore:"Details"`
	Contact         string    `firestore:"Contact"`
	ExternalGuildID string    `firestore:"ExternalGuildID"`
	OriginChannelID string    `firestore:"OriginChannelID"`
	OriginMessageID string    `firestore:"OriginMessageID"`
	AlertChannelID  string    `firestore:"AlertChannelID"`
	AlertMessageID  string    `firestore:"AlertMessageID"`
	Status          string    `firestore:"Status"`
	ResponderIDs    []string  `firestore:"ResponderIDs"`
	Conclusion      string    `firestore:"Conclusion"`
	ConcludedByID   string    `firestore:"ConcludedByID"`
	ConcludedByName string    `firestore:"ConcludedByName"`
	ConcludedAt     time.Time `firestore:"ConcludedAt"`
	CreatedAt       time.Time `firestore:"CreatedAt"`
	UpdatedAt       time.Time `firestore:"UpdatedAt"`
}

func toRequestDoc(req *model.Request) *requestDoc {
	responderIDs := make([]string, len(req.ResponderIDs))
	for i, id := range req.ResponderIDs {
		responderIDs[i] = id.String()
	}
	return &requestDoc{
		ID:              req.ID.String(),
		External:        req.External,
		RequesterID:     req.RequesterID.String(),
		RequesterName:   req.RequesterName,
		Location:        req.Location,
		Details:         req.Details,
		Contact:         req.Contact,
		ExternalGuildID: req.ExternalGuildID.String(),
		OriginChannelID: req.OriginMessage.ChannelID.String(),
		OriginMessageID: req.OriginMessage.MessageID.String(),
		AlertChannelID:  req.AlertMessage.ChannelID.String(),
		AlertMessageID:  req.AlertMessage.MessageID.String(),
		Status:          req.Status.String(),
		ResponderIDs:    responderIDs,
		Conclusion:      req.ConclusionReason,
		ConcludedByID:   req.ConcludedByID.String(),
		ConcludedByName: req.ConcludedByName,
		ConcludedAt:     req.ConcludedAt,
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	}
}

func fromRequestDoc(d *requestDoc) *model.Request {
	responderIDs := make([]types.UserID, len(d.ResponderIDs))
	for i, id := range d.ResponderIDs {
		responderIDs[i] = types.UserID(id)
	}
	return &model.Request{
		ID:              types.RequestID(d.ID),
		External:        d.External,
		RequesterID:     types.UserID(d.RequesterID),
		RequesterName:   d.RequesterName,
		Location:        d.Location,
		Details:         d.Details,
		Contact:         d.Contact,
		ExternalGuildID: types.GuildID(d.ExternalGuildID),
		OriginMessage: model.MessageRef{
			ChannelID: types.ChannelID(d.OriginChannelID),
			MessageID: types.MessageID(d.OriginMessageID),
		},
		AlertMessage: model.MessageRef{
			ChannelID: types.ChannelID(d.AlertChannelID),
			MessageID: types.MessageID(d.AlertMessageID),
		},
		Status:           types.RequestStatus(d.Status).Normalize(),
		ResponderIDs:     responderIDs,
		ConclusionReason: d.Conclusion,
		ConcludedByID:    types.UserID(d.ConcludedByID),
		ConcludedByName:  d.ConcludedByName,
		ConcludedAt:      d.ConcludedAt,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func docToRequest(doc *firestore.DocumentSnapshot) (*model.Request, error) {
	var d requestDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromRequestDoc(&d), nil
}

type requestRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRequestRepository(client *firestore.Client) *requestRepository {
	return &requestRepository{
		client: client,
	}
}

func (r *requestRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_requests"
	}
	return "requests"
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) (*model.Request, error) {
	now := time.Now().UTC()
	created := *req
	created.CreatedAt = now
	created.UpdatedAt = now

	docRef := r.client.Collection(r.collection()).Doc(created.ID.String())
	if _, err := docRef.Create(ctx, toRequestDoc(&created)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(repository.ErrAlreadyExists, "request already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *requestRepository) Get(ctx context.Context, id types.RequestID) (*model.Request, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(repository.ErrNotFound, "request not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get request", goerr.V("id", id))
	}

	req, err := docToRequest(docSnap)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode request", goerr.V("id", id))
	}

	return req, nil
}

func (r *requestRepository) Update(ctx context.Context, req *model.Request) (*model.Request, error) {
	docRef := r.client.Collection(r.collection()).Doc(req.ID.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(repository.ErrNotFound, "request not found", goerr.V("id", req.ID))
		}
		return nil, goerr.Wrap(err, "failed to check request existence", goerr.V("id", req.ID))
	}

	updated := *req
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, toRequestDoc(&updated)); err != nil {
		return nil, goerr.Wrap(err, "failed to update request", goerr.V("id", req.ID))
	}

	return &updated, nil
}

// AddResponder is a transactional read-modify-write: two concurrent
// respond actions on the same request serialize at the store, never
// racing a separate read and write.
func (r *requestRepository) AddResponder(ctx context.Context, id types.RequestID, responderID types.UserID) (*model.Request, bool, error) {
	docRef := r.client.Collection(r.collection()).Doc(id.String())

	var result *model.Request
	var alreadyPresent bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(repository.ErrNotFound, "request not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get request")
		}

		req, err := docToRequest(doc)
		if err != nil {
			return goerr.Wrap(err, "failed to decode request")
		}

		if req.Concluded() {
			return goerr.Wrap(repository.ErrAlreadyConcluded, "cannot respond to concluded request", goerr.V("id", id))
		}

		if req.HasResponder(responderID) {
			alreadyPresent = true
			result = req
			return nil
		}

		req.ResponderIDs = append(req.ResponderIDs, responderID)
		if req.Status == types.RequestStatusPending {
			req.Status = types.RequestStatusResponding
		}
		req.UpdatedAt = time.Now().UTC()

		result = req
		return tx.Set(docRef, toRequestDoc(req))
	})
	if err != nil {
		return nil, false, err
	}

	return result, alreadyPresent, nil
}

func (r *requestRepository) Conclude(ctx context.Context, id types.RequestID, reason string, byID types.UserID, byName string, at time.Time) (*model.Request, error) {
	docRef := r.client.Collection(r.collection()).Doc(id.String())

	var result *model.Request
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(repository.ErrNotFound, "request not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get request")
		}

		req, err := docToRequest(doc)
		if err != nil {
			return goerr.Wrap(err, "failed to decode request")
		}

		if req.Concluded() {
			return goerr.Wrap(repository.ErrAlreadyConcluded, "request already concluded", goerr.V("id", id))
		}

		req.Status = types.RequestStatusConcluded
		req.ConclusionReason = reason
		req.ConcludedByID = byID
		req.ConcludedByName = byName
		req.ConcludedAt = at.UTC()
		req.UpdatedAt = time.Now().UTC()

		result = req
		return tx.Set(docRef, toRequestDoc(req))
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *requestRepository) CountActiveByGuild(ctx context.Context, guildID types.GuildID) (int, error) {
	// Requires the ExternalGuildID+Status composite index
	iter := r.client.Collection(r.collection()).
		Where("ExternalGuildID", "==", guildID.String()).
		Where("Status", "in", []string{
			types.RequestStatusPending.String(),
			types.RequestStatusResponding.String(),
		}).
		Select().
		Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to count active requests", goerr.V("guild_id", guildID))
		}
		count++
	}

	return count, nil
}

func (r *requestRepository) List(ctx context.Context, opts ...interfaces.ListRequestOption) ([]*model.Request, error) {
	cfg := interfaces.BuildListRequestConfig(opts...)

	query := r.client.Collection(r.collection()).Query
	if s := cfg.Status(); s != nil {
		query = query.Where("Status", "==", s.String())
	}
	if g := cfg.GuildID(); g != nil {
		query = query.Where("ExternalGuildID", "==", g.String())
	}
	query = query.OrderBy("CreatedAt", firestore.Desc)
	if cfg.Limit() > 0 {
		query = query.Limit(cfg.Limit())
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	requests := make([]*model.Request, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate requests")
		}

		req, err := docToRequest(docSnap)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to decode request", goerr.V("doc_id", docSnap.Ref.ID))
		}

		requests = append(requests, req)
	}

	return requests, nil
}
