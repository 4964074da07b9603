// Package relational implements Storage on gorm. It serves the mysql,
// postgres and sqlite drivers with the same row models.
package relational

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"realtyhub/internal/database"
	"realtyhub/internal/domain"
	"realtyhub/internal/storage"
	apperrors "realtyhub/pkg/errors"
)

// errNotOwned rolls back SetMainImage when the image belongs to another property
var errNotOwned = errors.New("image does not belong to property")

// Store is the gorm-backed Storage
type Store struct {
	db *gorm.DB
}

var _ storage.Storage = (*Store)(nil)

// New wraps an open connection and migrates the schema
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(models...); err != nil {
		return nil, storage.Unavailable("migrate", err)
	}
	return &Store{db: db}, nil
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// uniqueViolation reports a unique index rejection. The sqlite driver is not
// translated by gorm, so its message is matched as well.
func uniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Users

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, key).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, storage.Unavailable("get user", err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&row).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, storage.Unavailable("get user by username", err)
	}
	return row.toDomain(), nil
}

func (s *Store) CreateUser(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	row := userRow{
		Username:     in.Username,
		PasswordHash: in.PasswordHash,
		IsAdmin:      in.IsAdmin,
		CreatedAt:    storage.Now(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&userRow{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return storage.Duplicate("username")
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, createUserError(err)
	}
	return row.toDomain(), nil
}

// createUserError maps a failed insert. Concurrent registrations can pass the
// count check together; the unique index then rejects the later one.
func createUserError(err error) error {
	if apperrors.IsDuplicateKey(err) {
		return err
	}
	if uniqueViolation(err) {
		return storage.Duplicate("username")
	}
	return storage.Unavailable("create user", err)
}

// Properties

func (s *Store) ListActiveProperties(ctx context.Context) ([]domain.Property, error) {
	var rows []propertyRow
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, storage.Unavailable("list properties", err)
	}
	out := make([]domain.Property, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toDomain())
	}
	return out, nil
}

func (s *Store) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	var row propertyRow
	if err := s.db.WithContext(ctx).First(&row, key).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, storage.Unavailable("get property", err)
	}
	return row.toDomain(), nil
}

func (s *Store) CreateProperty(ctx context.Context, in domain.NewProperty) (*domain.Property, error) {
	row := newPropertyRow(storage.BuildProperty(in, storage.Now()))
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, storage.Unavailable("create property", err)
	}
	return row.toDomain(), nil
}

func (s *Store) UpdateProperty(ctx context.Context, id string, patch domain.PropertyPatch) (*domain.Property, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	var updated *domain.Property
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row propertyRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, key).Error; err != nil {
			return err
		}
		p := row.toDomain()
		patch.Apply(p)
		p.UpdatedAt = storage.Now()

		next := newPropertyRow(*p)
		next.ID = row.ID
		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		updated = next.toDomain()
		return nil
	})
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, storage.Unavailable("update property", err)
	}
	return updated, nil
}

func (s *Store) DeleteProperty(ctx context.Context, id string) (bool, error) {
	key, ok := parseID(id)
	if !ok {
		return false, nil
	}
	res := s.db.WithContext(ctx).Model(&propertyRow{}).Where("id = ?", key).
		Updates(map[string]interface{}{"is_active": false, "updated_at": storage.Now()})
	if res.Error != nil {
		return false, storage.Unavailable("delete property", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Property images

func (s *Store) GetPropertyImages(ctx context.Context, propertyID string) ([]domain.PropertyImage, error) {
	out := []domain.PropertyImage{}
	key, ok := parseID(propertyID)
	if !ok {
		return out, nil
	}
	var rows []propertyImageRow
	err := s.db.WithContext(ctx).
		Where("property_id = ?", key).
		Order("is_main DESC").Order("sort_order ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storage.Unavailable("list property images", err)
	}
	for i := range rows {
		out = append(out, *rows[i].toDomain())
	}
	return out, nil
}

func (s *Store) CreatePropertyImage(ctx context.Context, in domain.NewPropertyImage) (*domain.PropertyImage, error) {
	key, ok := parseID(in.PropertyID)
	if !ok {
		return nil, apperrors.NotFound("property")
	}
	row := propertyImageRow{
		PropertyID: key,
		ImageURL:   in.ImageURL,
		Caption:    in.Caption,
		IsMain:     in.IsMain,
		SortOrder:  in.SortOrder,
		CreatedAt:  storage.Now(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&propertyRow{}).Where("id = ?", key).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperrors.NotFound("property")
		}
		if row.IsMain {
			if err := tx.Model(&propertyImageRow{}).Where("property_id = ?", key).
				Update("is_main", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, err
		}
		return nil, storage.Unavailable("create property image", err)
	}
	return row.toDomain(), nil
}

func (s *Store) DeletePropertyImage(ctx context.Context, id string) (bool, error) {
	key, ok := parseID(id)
	if !ok {
		return false, nil
	}
	res := s.db.WithContext(ctx).Delete(&propertyImageRow{}, key)
	if res.Error != nil {
		return false, storage.Unavailable("delete property image", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SetMainImage clears and sets the flag in one transaction, so readers see
// either the old main image or the new one.
func (s *Store) SetMainImage(ctx context.Context, propertyID, imageID string) (bool, error) {
	pKey, ok := parseID(propertyID)
	if !ok {
		return false, nil
	}
	iKey, ok := parseID(imageID)
	if !ok {
		return false, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&propertyImageRow{}).Where("property_id = ?", pKey).
			Update("is_main", false).Error; err != nil {
			return err
		}
		res := tx.Model(&propertyImageRow{}).Where("id = ? AND property_id = ?", iKey, pKey).
			Update("is_main", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNotOwned
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errNotOwned) {
			return false, nil
		}
		return false, storage.Unavailable("set main image", err)
	}
	return true, nil
}

// Slider

func (s *Store) listSliders(ctx context.Context, activeOnly bool) ([]domain.SliderImage, error) {
	var rows []sliderImageRow
	q := s.db.WithContext(ctx).Order("id ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, storage.Unavailable("list slider images", err)
	}
	out := make([]domain.SliderImage, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toDomain())
	}
	return out, nil
}

func (s *Store) ListSliderImages(ctx context.Context) ([]domain.SliderImage, error) {
	return s.listSliders(ctx, true)
}

func (s *Store) ListAllSliderImages(ctx context.Context) ([]domain.SliderImage, error) {
	return s.listSliders(ctx, false)
}

func (s *Store) CreateSliderImage(ctx context.Context, in domain.NewSliderImage) (*domain.SliderImage, error) {
	sl := storage.BuildSliderImage(in, storage.Now())
	row := sliderImageRow{
		ImageURL:    sl.ImageURL,
		Title:       sl.Title,
		Description: sl.Description,
		IsActive:    sl.IsActive,
		CreatedAt:   sl.CreatedAt,
		UpdatedAt:   sl.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, storage.Unavailable("create slider image", err)
	}
	return row.toDomain(), nil
}

func (s *Store) UpdateSliderImage(ctx context.Context, id string, patch domain.SliderImagePatch) (bool, error) {
	key, ok := parseID(id)
	if !ok {
		return false, nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row sliderImageRow
		if err := tx.First(&row, key).Error; err != nil {
			return err
		}
		sl := row.toDomain()
		patch.Apply(sl)
		row.ImageURL = sl.ImageURL
		row.Title = sl.Title
		row.Description = sl.Description
		row.IsActive = sl.IsActive
		row.UpdatedAt = storage.Now()
		return tx.Save(&row).Error
	})
	if err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, storage.Unavailable("update slider image", err)
	}
	return true, nil
}

func (s *Store) DeleteSliderImage(ctx context.Context, id string) (bool, error) {
	key, ok := parseID(id)
	if !ok {
		return false, nil
	}
	res := s.db.WithContext(ctx).Delete(&sliderImageRow{}, key)
	if res.Error != nil {
		return false, storage.Unavailable("delete slider image", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Settings

func (s *Store) GetWhatsAppSettings(ctx context.Context) (*domain.WhatsAppSettings, error) {
	var row whatsAppSettingsRow
	if err := s.db.WithContext(ctx).First(&row, singletonID).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, storage.Unavailable("get whatsapp settings", err)
	}
	return row.toDomain(), nil
}

// UpdateWhatsAppSettings seeds the singleton row if missing, then applies the patch
func (s *Store) UpdateWhatsAppSettings(ctx context.Context, patch domain.WhatsAppSettingsPatch) (*domain.WhatsAppSettings, error) {
	var updated *domain.WhatsAppSettings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := newWhatsAppSettingsRow(domain.DefaultWhatsAppSettings(storage.Now()))
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}
		var row whatsAppSettingsRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, singletonID).Error; err != nil {
			return err
		}
		current := row.toDomain()
		patch.Apply(current)
		current.UpdatedAt = storage.Now()
		next := newWhatsAppSettingsRow(*current)
		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		updated = next.toDomain()
		return nil
	})
	if err != nil {
		return nil, storage.Unavailable("update whatsapp settings", err)
	}
	return updated, nil
}

func (s *Store) GetContactSettings(ctx context.Context) (*domain.ContactSettings, error) {
	var row contactSettingsRow
	if err := s.db.WithContext(ctx).First(&row, singletonID).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, storage.Unavailable("get contact settings", err)
	}
	return row.toDomain(), nil
}

func (s *Store) UpdateContactSettings(ctx context.Context, patch domain.ContactSettingsPatch) (*domain.ContactSettings, error) {
	var updated *domain.ContactSettings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := newContactSettingsRow(domain.DefaultContactSettings(storage.Now()))
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}
		var row contactSettingsRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, singletonID).Error; err != nil {
			return err
		}
		current := row.toDomain()
		patch.Apply(current)
		current.UpdatedAt = storage.Now()
		next := newContactSettingsRow(*current)
		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		updated = next.toDomain()
		return nil
	})
	if err != nil {
		return nil, storage.Unavailable("update contact settings", err)
	}
	return updated, nil
}

// Contact messages

func (s *Store) CreateContactMessage(ctx context.Context, in domain.NewContactMessage) (*domain.ContactMessage, error) {
	m := storage.BuildContactMessage(in, storage.Now())
	row := contactMessageRow{
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Message:   m.Message,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, storage.Unavailable("create contact message", err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListContactMessages(ctx context.Context) ([]domain.ContactMessage, error) {
	var rows []contactMessageRow
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, storage.Unavailable("list contact messages", err)
	}
	out := make([]domain.ContactMessage, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toDomain())
	}
	return out, nil
}

// MarkContactMessageAsRead checks existence separately because an update of
// an already-read row reports zero affected rows on MySQL.
func (s *Store) MarkContactMessageAsRead(ctx context.Context, id string) (bool, error) {
	key, ok := parseID(id)
	if !ok {
		return false, nil
	}
	var found bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&contactMessageRow{}).Where("id = ?", key).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		found = true
		return tx.Model(&contactMessageRow{}).Where("id = ?", key).Update("is_read", true).Error
	})
	if err != nil {
		return false, storage.Unavailable("mark contact message read", err)
	}
	return found, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := database.Ping(ctx, s.db); err != nil {
		return storage.Unavailable("ping", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return database.Close(s.db)
}

// Stats reports connection pool usage
func (s *Store) Stats() (*sql.DBStats, error) {
	return database.GetStats(s.db)
}
