// Package mongo implements Storage on MongoDB. Identifiers are ObjectID hex strings.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"realtyhub/internal/domain"
	"realtyhub/internal/storage"
	apperrors "realtyhub/pkg/errors"
)

// Store is the MongoDB-backed Storage
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ storage.Storage = (*Store)(nil)

// Connect dials uri, pings within timeout and ensures indexes
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Println("[DB] Connecting to MongoDB...")
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, storage.Unavailable("connect", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, storage.Unavailable("ping", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, storage.Unavailable("create indexes", err)
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colProperties: {
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		colPropertyImages: {
			{Keys: bson.D{{Key: "propertyId", Value: 1}, {Key: "sortOrder", Value: 1}}},
		},
		colContactMessages: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}
	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func noDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// Users

func (s *Store) findUser(ctx context.Context, filter bson.M, op string) (*domain.User, error) {
	var doc userDoc
	if err := s.col(colUsers).FindOne(ctx, filter).Decode(&doc); err != nil {
		if noDocuments(err) {
			return nil, nil
		}
		return nil, storage.Unavailable(op, err)
	}
	return doc.toDomain(), nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return s.findUser(ctx, bson.M{"_id": oid}, "get user")
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"username": username}, "get user by username")
}

func (s *Store) CreateUser(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Username:     in.Username,
		PasswordHash: in.PasswordHash,
		IsAdmin:      in.IsAdmin,
		CreatedAt:    storage.Now(),
	}
	if _, err := s.col(colUsers).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, storage.Duplicate("username")
		}
		return nil, storage.Unavailable("create user", err)
	}
	return doc.toDomain(), nil
}

// Properties

func (s *Store) ListActiveProperties(ctx context.Context) ([]domain.Property, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.col(colProperties).Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, storage.Unavailable("list properties", err)
	}
	var docs []propertyDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storage.Unavailable("list properties", err)
	}
	out := make([]domain.Property, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].toDomain())
	}
	return out, nil
}

func (s *Store) findProperty(ctx context.Context, oid primitive.ObjectID) (*propertyDoc, error) {
	var doc propertyDoc
	if err := s.col(colProperties).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if noDocuments(err) {
			return nil, nil
		}
		return nil, storage.Unavailable("get property", err)
	}
	return &doc, nil
}

func (s *Store) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	doc, err := s.findProperty(ctx, oid)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *Store) CreateProperty(ctx context.Context, in domain.NewProperty) (*domain.Property, error) {
	doc := newPropertyDoc(storage.BuildProperty(in, storage.Now()))
	doc.ID = primitive.NewObjectID()
	if _, err := s.col(colProperties).InsertOne(ctx, doc); err != nil {
		return nil, storage.Unavailable("create property", err)
	}
	return doc.toDomain(), nil
}

func propertySetFields(patch domain.PropertyPatch) bson.M {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.PropertyType != nil {
		set["propertyType"] = *patch.PropertyType
	}
	if patch.Bedrooms != nil {
		set["bedrooms"] = *patch.Bedrooms
	}
	if patch.Bathrooms != nil {
		set["bathrooms"] = *patch.Bathrooms
	}
	if patch.Size != nil {
		set["size"] = *patch.Size
	}
	if patch.Status != nil {
		set["status"] = nonNil(*patch.Status)
	}
	if patch.ImageURLs != nil {
		set["imageUrls"] = nonNil(*patch.ImageURLs)
	}
	if patch.IsActive != nil {
		set["isActive"] = *patch.IsActive
	}
	return set
}

func (s *Store) UpdateProperty(ctx context.Context, id string, patch domain.PropertyPatch) (*domain.Property, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	set := propertySetFields(patch)
	set["updatedAt"] = storage.Now()

	var doc propertyDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.col(colProperties).FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if noDocuments(err) {
			return nil, nil
		}
		return nil, storage.Unavailable("update property", err)
	}
	return doc.toDomain(), nil
}

func (s *Store) DeleteProperty(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := s.col(colProperties).UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": storage.Now()}})
	if err != nil {
		return false, storage.Unavailable("delete property", err)
	}
	return res.MatchedCount > 0, nil
}

// Property images

func (s *Store) GetPropertyImages(ctx context.Context, propertyID string) ([]domain.PropertyImage, error) {
	out := []domain.PropertyImage{}
	oid, ok := objectID(propertyID)
	if !ok {
		return out, nil
	}
	property, err := s.findProperty(ctx, oid)
	if err != nil {
		return nil, err
	}
	var mainID *primitive.ObjectID
	if property != nil {
		mainID = property.MainImageID
	}

	opts := options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.col(colPropertyImages).Find(ctx, bson.M{"propertyId": oid}, opts)
	if err != nil {
		return nil, storage.Unavailable("list property images", err)
	}
	var docs []propertyImageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storage.Unavailable("list property images", err)
	}
	for i := range docs {
		out = append(out, *docs[i].toDomain(mainID))
	}
	storage.SortImages(out)
	return out, nil
}

func (s *Store) CreatePropertyImage(ctx context.Context, in domain.NewPropertyImage) (*domain.PropertyImage, error) {
	pid, ok := objectID(in.PropertyID)
	if !ok {
		return nil, apperrors.NotFound("property")
	}
	property, err := s.findProperty(ctx, pid)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, apperrors.NotFound("property")
	}

	doc := propertyImageDoc{
		ID:         primitive.NewObjectID(),
		PropertyID: pid,
		ImageURL:   in.ImageURL,
		Caption:    in.Caption,
		SortOrder:  in.SortOrder,
		CreatedAt:  storage.Now(),
	}
	if _, err := s.col(colPropertyImages).InsertOne(ctx, doc); err != nil {
		return nil, storage.Unavailable("create property image", err)
	}

	var mainID *primitive.ObjectID
	if in.IsMain {
		if _, err := s.col(colProperties).UpdateOne(ctx, bson.M{"_id": pid},
			bson.M{"$set": bson.M{"mainImageId": doc.ID}}); err != nil {
			return nil, storage.Unavailable("create property image", err)
		}
		mainID = &doc.ID
	}
	return doc.toDomain(mainID), nil
}

// DeletePropertyImage also drops the main image pointer when it referenced the deleted image
func (s *Store) DeletePropertyImage(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	var doc propertyImageDoc
	if err := s.col(colPropertyImages).FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if noDocuments(err) {
			return false, nil
		}
		return false, storage.Unavailable("delete property image", err)
	}
	_, err := s.col(colProperties).UpdateOne(ctx,
		bson.M{"_id": doc.PropertyID, "mainImageId": oid},
		bson.M{"$unset": bson.M{"mainImageId": ""}})
	if err != nil {
		return true, storage.Unavailable("delete property image", err)
	}
	return true, nil
}

// SetMainImage points the property at the image in a single document update.
// Concurrent callers race on that one field, so the last write wins.
func (s *Store) SetMainImage(ctx context.Context, propertyID, imageID string) (bool, error) {
	pid, ok := objectID(propertyID)
	if !ok {
		return false, nil
	}
	iid, ok := objectID(imageID)
	if !ok {
		return false, nil
	}

	count, err := s.col(colPropertyImages).CountDocuments(ctx, bson.M{"_id": iid, "propertyId": pid})
	if err != nil {
		return false, storage.Unavailable("set main image", err)
	}
	if count == 0 {
		return false, nil
	}

	res, err := s.col(colProperties).UpdateOne(ctx, bson.M{"_id": pid}, bson.M{"$set": bson.M{"mainImageId": iid}})
	if err != nil {
		return false, storage.Unavailable("set main image", err)
	}
	return res.MatchedCount > 0, nil
}

// Slider

func (s *Store) listSliders(ctx context.Context, filter bson.M) ([]domain.SliderImage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.col(colSliderImages).Find(ctx, filter, opts)
	if err != nil {
		return nil, storage.Unavailable("list slider images", err)
	}
	var docs []sliderImageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storage.Unavailable("list slider images", err)
	}
	out := make([]domain.SliderImage, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].toDomain())
	}
	return out, nil
}

func (s *Store) ListSliderImages(ctx context.Context) ([]domain.SliderImage, error) {
	return s.listSliders(ctx, bson.M{"isActive": true})
}

func (s *Store) ListAllSliderImages(ctx context.Context) ([]domain.SliderImage, error) {
	return s.listSliders(ctx, bson.M{})
}

func (s *Store) CreateSliderImage(ctx context.Context, in domain.NewSliderImage) (*domain.SliderImage, error) {
	sl := storage.BuildSliderImage(in, storage.Now())
	doc := sliderImageDoc{
		ID:          primitive.NewObjectID(),
		ImageURL:    sl.ImageURL,
		Title:       sl.Title,
		Description: sl.Description,
		IsActive:    sl.IsActive,
		CreatedAt:   sl.CreatedAt,
		UpdatedAt:   sl.UpdatedAt,
	}
	if _, err := s.col(colSliderImages).InsertOne(ctx, doc); err != nil {
		return nil, storage.Unavailable("create slider image", err)
	}
	return doc.toDomain(), nil
}

func (s *Store) UpdateSliderImage(ctx context.Context, id string, patch domain.SliderImagePatch) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	set := bson.M{"updatedAt": storage.Now()}
	if patch.ImageURL != nil {
		set["imageUrl"] = *patch.ImageURL
	}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.IsActive != nil {
		set["isActive"] = *patch.IsActive
	}
	res, err := s.col(colSliderImages).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return false, storage.Unavailable("update slider image", err)
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) DeleteSliderImage(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := s.col(colSliderImages).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, storage.Unavailable("delete slider image", err)
	}
	return res.DeletedCount > 0, nil
}

// Settings

// upsertSingleton writes set over the singleton document, seeding it with
// defaults on first write. Keys present in set are removed from defaults since
// MongoDB rejects the same path in both operators.
func (s *Store) upsertSingleton(ctx context.Context, collection string, set, defaults bson.M, out interface{}) error {
	now := storage.Now()
	for key := range set {
		delete(defaults, key)
	}
	set["updatedAt"] = now
	delete(defaults, "updatedAt")
	defaults["createdAt"] = now

	update := bson.M{"$set": set, "$setOnInsert": defaults}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	return s.col(collection).FindOneAndUpdate(ctx, bson.M{"_id": singletonID}, update, opts).Decode(out)
}

func (s *Store) GetWhatsAppSettings(ctx context.Context) (*domain.WhatsAppSettings, error) {
	var doc whatsAppSettingsDoc
	if err := s.col(colWhatsAppSetting).FindOne(ctx, bson.M{"_id": singletonID}).Decode(&doc); err != nil {
		if noDocuments(err) {
			return nil, nil
		}
		return nil, storage.Unavailable("get whatsapp settings", err)
	}
	return doc.toDomain(), nil
}

func (s *Store) UpdateWhatsAppSettings(ctx context.Context, patch domain.WhatsAppSettingsPatch) (*domain.WhatsAppSettings, error) {
	set := bson.M{}
	if patch.PhoneNumber != nil {
		set["phoneNumber"] = *patch.PhoneNumber
	}
	if patch.IsActive != nil {
		set["isActive"] = *patch.IsActive
	}
	if patch.BusinessName != nil {
		set["businessName"] = *patch.BusinessName
	}
	if patch.WelcomeMessage != nil {
		set["welcomeMessage"] = *patch.WelcomeMessage
	}
	if patch.PropertyInquiryTemplate != nil {
		set["propertyInquiryTemplate"] = *patch.PropertyInquiryTemplate
	}
	if patch.GeneralInquiryTemplate != nil {
		set["generalInquiryTemplate"] = *patch.GeneralInquiryTemplate
	}

	def := domain.DefaultWhatsAppSettings(storage.Now())
	defaults := bson.M{
		"phoneNumber":             def.PhoneNumber,
		"isActive":                def.IsActive,
		"businessName":            def.BusinessName,
		"welcomeMessage":          def.WelcomeMessage,
		"propertyInquiryTemplate": def.PropertyInquiryTemplate,
		"generalInquiryTemplate":  def.GeneralInquiryTemplate,
	}

	var doc whatsAppSettingsDoc
	if err := s.upsertSingleton(ctx, colWhatsAppSetting, set, defaults, &doc); err != nil {
		return nil, storage.Unavailable("update whatsapp settings", err)
	}
	return doc.toDomain(), nil
}

func (s *Store) GetContactSettings(ctx context.Context) (*domain.ContactSettings, error) {
	var doc contactSettingsDoc
	if err := s.col(colContactSetting).FindOne(ctx, bson.M{"_id": singletonID}).Decode(&doc); err != nil {
		if noDocuments(err) {
			return nil, nil
		}
		return nil, storage.Unavailable("get contact settings", err)
	}
	return doc.toDomain(), nil
}

func (s *Store) UpdateContactSettings(ctx context.Context, patch domain.ContactSettingsPatch) (*domain.ContactSettings, error) {
	set := bson.M{}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if patch.IsActive != nil {
		set["isActive"] = *patch.IsActive
	}

	def := domain.DefaultContactSettings(storage.Now())
	defaults := bson.M{
		"phone":    def.Phone,
		"email":    def.Email,
		"address":  def.Address,
		"isActive": def.IsActive,
	}

	var doc contactSettingsDoc
	if err := s.upsertSingleton(ctx, colContactSetting, set, defaults, &doc); err != nil {
		return nil, storage.Unavailable("update contact settings", err)
	}
	return doc.toDomain(), nil
}

// Contact messages

func (s *Store) CreateContactMessage(ctx context.Context, in domain.NewContactMessage) (*domain.ContactMessage, error) {
	m := storage.BuildContactMessage(in, storage.Now())
	doc := contactMessageDoc{
		ID:        primitive.NewObjectID(),
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Message:   m.Message,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
	if _, err := s.col(colContactMessages).InsertOne(ctx, doc); err != nil {
		return nil, storage.Unavailable("create contact message", err)
	}
	return doc.toDomain(), nil
}

func (s *Store) ListContactMessages(ctx context.Context) ([]domain.ContactMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.col(colContactMessages).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storage.Unavailable("list contact messages", err)
	}
	var docs []contactMessageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storage.Unavailable("list contact messages", err)
	}
	out := make([]domain.ContactMessage, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].toDomain())
	}
	return out, nil
}

func (s *Store) MarkContactMessageAsRead(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := s.col(colContactMessages).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return false, storage.Unavailable("mark contact message read", err)
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return storage.Unavailable("ping", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop removes the database. Used by tests.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}
