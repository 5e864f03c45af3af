package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection    = "users"
	listingsCollection = "cpt_listings"
	bidsCollection     = "bids"
)

var _ Repository = (*MongoRepository)(nil)

// MongoRepository implements Repository on a MongoDB database
type MongoRepository struct {
	client   *mongo.Client
	users    *mongo.Collection
	listings *mongo.Collection
	bids     *mongo.Collection
}

// NewMongoRepository creates a repository over the named database
func NewMongoRepository(client *mongo.Client, database string) *MongoRepository {
	db := client.Database(database)
	return &MongoRepository{
		client:   client,
		users:    db.Collection(usersCollection),
		listings: db.Collection(listingsCollection),
		bids:     db.Collection(bidsCollection),
	}
}

// EnsureIndexes creates the unique and lookup indexes the queries rely on
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create users.email index: %w", err)
	}
	if _, err := r.listings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "cptCode", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "zipCode", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create cpt_listings indexes: %w", err)
	}
	if _, err := r.bids.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create bids indexes: %w", err)
	}
	return nil
}

// Ping checks the underlying connection
func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// CreateUser creates a new user
func (r *MongoRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.Email = models.NormalizeEmail(user.Email)
	user.Touch(time.Now().UTC())

	if _, err := r.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by id
func (r *MongoRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, noDocumentsOr(err, "failed to get user")
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (r *MongoRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.users.FindOne(ctx, bson.M{"email": models.NormalizeEmail(email)}).Decode(&user); err != nil {
		return nil, noDocumentsOr(err, "failed to get user by email")
	}
	return &user, nil
}

// UpdateUserProfile applies a profile patch
func (r *MongoRepository) UpdateUserProfile(ctx context.Context, id string, patch *models.UpdateProfileRequest) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.FirstName != nil {
		set["firstName"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["lastName"] = *patch.LastName
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.ZipCode != nil {
		set["zipCode"] = *patch.ZipCode
	}
	if patch.NumberOfEmployees != nil {
		set["numberOfEmployees"] = *patch.NumberOfEmployees
	}
	if patch.PlanType != nil {
		set["planType"] = string(*patch.PlanType)
	}

	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user); err != nil {
		return nil, noDocumentsOr(err, "failed to update user")
	}
	return &user, nil
}

// ListUsers retrieves users with optional filtering
func (r *MongoRepository) ListUsers(ctx context.Context, filters *UserFilters) ([]models.User, int64, error) {
	filter := bson.M{}
	if filters.Type != nil && *filters.Type != "" {
		filter["type"] = string(*filters.Type)
	}

	total, err := r.users.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	opts := options.Find().
		SetProjection(bson.M{"password": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(filters.Offset)).
		SetLimit(int64(normalizeLimit(filters.Limit)))

	users := []models.User{}
	if err := r.findAll(ctx, r.users, filter, &users, opts); err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve users: %w", err)
	}
	return users, total, nil
}

// GetListingByID retrieves a CPT listing by id
func (r *MongoRepository) GetListingByID(ctx context.Context, id string) (*models.CPTListing, error) {
	var listing models.CPTListing
	if err := r.listings.FindOne(ctx, bson.M{"_id": id}).Decode(&listing); err != nil {
		return nil, noDocumentsOr(err, "failed to get listing")
	}
	return &listing, nil
}

// SearchListings retrieves listings matching a term and/or ZIP code
func (r *MongoRepository) SearchListings(ctx context.Context, filters *ListingFilters) ([]models.CPTListing, int64, error) {
	filter := bson.M{}
	if filters.Term != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(filters.Term), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"cptCode": pattern},
			bson.M{"description": pattern},
		}
	}
	if filters.ZipCode != "" {
		filter["zipCode"] = filters.ZipCode
	}

	total, err := r.listings.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "cptCode", Value: 1}}).
		SetSkip(int64(filters.Offset)).
		SetLimit(int64(normalizeLimit(filters.Limit)))

	listings := []models.CPTListing{}
	if err := r.findAll(ctx, r.listings, filter, &listings, opts); err != nil {
		return nil, 0, fmt.Errorf("failed to search listings: %w", err)
	}
	return listings, total, nil
}

// UpsertListings inserts listings, refreshing the catalog fields of existing CPT codes
func (r *MongoRepository) UpsertListings(ctx context.Context, listings []models.CPTListing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(listings))
	for _, l := range listings {
		id := l.ID
		if id == "" {
			id = uuid.NewString()
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"cptCode": l.CPTCode}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"specialty":     l.Specialty,
					"description":   l.Description,
					"county":        l.County,
					"state":         l.State,
					"zipCode":       l.ZipCode,
					"avgCharge":     l.AvgCharge,
					"minCharge":     l.MinCharge,
					"maxCharge":     l.MaxCharge,
					"reserveAmount": l.ReserveAmount,
					"updatedAt":     now,
				},
				"$setOnInsert": bson.M{"_id": id, "createdAt": now},
			}).
			SetUpsert(true))
	}

	if _, err := r.listings.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return 0, fmt.Errorf("failed to upsert listings: %w", err)
	}
	return len(listings), nil
}

// CreateBid creates a new bid
func (r *MongoRepository) CreateBid(ctx context.Context, bid *models.Bid) error {
	if bid.ID == "" {
		bid.ID = uuid.NewString()
	}
	if bid.Status == "" {
		bid.Status = models.BidStatusPending
	}
	bid.Touch(time.Now().UTC())

	if _, err := r.bids.InsertOne(ctx, bid); err != nil {
		return fmt.Errorf("failed to create bid: %w", err)
	}
	return nil
}

// GetBidByID retrieves a bid with its owner and listing
func (r *MongoRepository) GetBidByID(ctx context.Context, id string) (*models.Bid, error) {
	var bid models.Bid
	if err := r.bids.FindOne(ctx, bson.M{"_id": id}).Decode(&bid); err != nil {
		return nil, noDocumentsOr(err, "failed to get bid")
	}
	bids := []models.Bid{bid}
	if err := r.attachRelations(ctx, bids); err != nil {
		return nil, err
	}
	return &bids[0], nil
}

// ListBidsByUser retrieves every bid of a user, newest first
func (r *MongoRepository) ListBidsByUser(ctx context.Context, userID string) ([]models.Bid, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	bids := []models.Bid{}
	if err := r.findAll(ctx, r.bids, bson.M{"userId": userID}, &bids, opts); err != nil {
		return nil, fmt.Errorf("failed to retrieve bids for user: %w", err)
	}
	if err := r.attachRelations(ctx, bids); err != nil {
		return nil, err
	}
	return bids, nil
}

// ListBids retrieves bids with optional filtering
func (r *MongoRepository) ListBids(ctx context.Context, filters *BidFilters) ([]models.Bid, int64, error) {
	filter := bson.M{}
	if filters.Status != nil && *filters.Status != "" {
		filter["status"] = string(*filters.Status)
	}

	total, err := r.bids.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bids: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(filters.Offset)).
		SetLimit(int64(normalizeLimit(filters.Limit)))

	bids := []models.Bid{}
	if err := r.findAll(ctx, r.bids, filter, &bids, opts); err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve bids: %w", err)
	}
	if err := r.attachRelations(ctx, bids); err != nil {
		return nil, 0, err
	}
	return bids, total, nil
}

// CountBidsByUsers counts bids per user
func (r *MongoRepository) CountBidsByUsers(ctx context.Context, userIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": bson.M{"$in": userIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$userId", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.bids.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count bids by user: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		UserID string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode bid counts: %w", err)
	}
	for _, row := range rows {
		counts[row.UserID] = row.Count
	}
	return counts, nil
}

// AmendPendingBid updates the amount of a bid that has not been adjudicated
func (r *MongoRepository) AmendPendingBid(ctx context.Context, id string, amount float64) (*models.Bid, error) {
	filter := bson.M{"_id": id, "status": string(models.BidStatusPending)}
	update := bson.M{"$set": bson.M{"bidAmount": amount, "updatedAt": time.Now().UTC()}}

	var bid models.Bid
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.bids.FindOneAndUpdate(ctx, filter, update, opts).Decode(&bid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		count, countErr := r.bids.CountDocuments(ctx, bson.M{"_id": id})
		if countErr != nil {
			return nil, fmt.Errorf("failed to check bid: %w", countErr)
		}
		if count == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to amend bid: %w", err)
	}
	return r.withRelations(ctx, bid)
}

// AdjudicateBid records an admin decision on a bid
func (r *MongoRepository) AdjudicateBid(ctx context.Context, id string, status models.BidStatus, comments *string) (*models.Bid, error) {
	set := bson.M{"status": string(status), "updatedAt": time.Now().UTC()}
	if comments != nil {
		set["adminComments"] = *comments
	}

	var bid models.Bid
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.bids.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&bid); err != nil {
		return nil, noDocumentsOr(err, "failed to adjudicate bid")
	}
	return r.withRelations(ctx, bid)
}

func (r *MongoRepository) withRelations(ctx context.Context, bid models.Bid) (*models.Bid, error) {
	bids := []models.Bid{bid}
	if err := r.attachRelations(ctx, bids); err != nil {
		return nil, err
	}
	return &bids[0], nil
}

// attachRelations resolves owners and listings for a page of bids with one query per collection
func (r *MongoRepository) attachRelations(ctx context.Context, bids []models.Bid) error {
	if len(bids) == 0 {
		return nil
	}

	listingIDs := make([]string, 0, len(bids))
	userIDs := make([]string, 0, len(bids))
	for _, b := range bids {
		listingIDs = append(listingIDs, b.CPTDataID)
		userIDs = append(userIDs, b.UserID)
	}

	var listings []models.CPTListing
	if err := r.findAll(ctx, r.listings, bson.M{"_id": bson.M{"$in": listingIDs}}, &listings); err != nil {
		return fmt.Errorf("failed to load bid listings: %w", err)
	}
	var users []models.User
	userOpts := options.Find().SetProjection(bson.M{"password": 0})
	if err := r.findAll(ctx, r.users, bson.M{"_id": bson.M{"$in": userIDs}}, &users, userOpts); err != nil {
		return fmt.Errorf("failed to load bid owners: %w", err)
	}

	listingByID := make(map[string]*models.CPTListing, len(listings))
	for i := range listings {
		listingByID[listings[i].ID] = &listings[i]
	}
	userByID := make(map[string]*models.User, len(users))
	for i := range users {
		userByID[users[i].ID] = &users[i]
	}
	for i := range bids {
		bids[i].CPTData = listingByID[bids[i].CPTDataID]
		bids[i].User = userByID[bids[i].UserID]
	}
	return nil
}

func (r *MongoRepository) findAll(ctx context.Context, coll *mongo.Collection, filter interface{}, out interface{}, opts ...*options.FindOptions) error {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func noDocumentsOr(err error, msg string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
