package database

import (
	"errors"
	"fmt"
	"time"

	"real-estate-site/internal/editor"
	"real-estate-site/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	db *gorm.DB
}

func NewGormDB(host, port, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Property{},
		&models.PropertyImage{},
		&models.User{},
		&models.DeleteLog{},
	)
}

// Create persists a new property and its gallery rows in one transaction.
func (gdb *GormDB) Create(p *models.Property, gallery []string) error {
	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return createGalleryRows(tx, p.ID, gallery)
	})
	if err != nil {
		return err
	}
	p.Gallery = append([]string(nil), gallery...)
	return nil
}

// GetByID retrieves a property and its gallery by ID
func (gdb *GormDB) GetByID(id int64) (*models.Property, error) {
	var property models.Property
	if err := gdb.db.Where("id = ?", id).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, editor.ErrNotFound
		}
		return nil, err
	}

	var images []models.PropertyImage
	if err := gdb.db.Where("property_id = ?", id).Order("sort_order ASC, id ASC").Find(&images).Error; err != nil {
		return nil, err
	}
	property.Gallery = make([]string, 0, len(images))
	for _, img := range images {
		property.Gallery = append(property.Gallery, img.FileName)
	}

	return &property, nil
}

// List retrieves all properties, newest first, with galleries attached.
func (gdb *GormDB) List() ([]models.Property, error) {
	var properties []models.Property
	if err := gdb.db.Order("created_at DESC, id DESC").Find(&properties).Error; err != nil {
		return nil, err
	}
	if len(properties) == 0 {
		return properties, nil
	}

	var images []models.PropertyImage
	if err := gdb.db.Order("sort_order ASC, id ASC").Find(&images).Error; err != nil {
		return nil, err
	}
	byProperty := make(map[int64][]string, len(properties))
	for _, img := range images {
		byProperty[img.PropertyID] = append(byProperty[img.PropertyID], img.FileName)
	}
	for i := range properties {
		gallery := byProperty[properties[i].ID]
		if gallery == nil {
			gallery = []string{}
		}
		properties[i].Gallery = gallery
	}

	return properties, nil
}

// Update persists scalar fields and replaces the gallery rows in one
// transaction, so a partial write never leaves the row half-updated.
func (gdb *GormDB) Update(p *models.Property, gallery []string) error {
	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Property{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
			"name":        p.Name,
			"description": p.Description,
			"location":    p.Location,
			"price":       p.Price,
			"main_image":  p.MainImage,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return editor.ErrNotFound
		}

		// Replace the full gallery set. An empty set is a valid state and
		// must clear existing rows.
		if err := tx.Where("property_id = ?", p.ID).Delete(&models.PropertyImage{}).Error; err != nil {
			return err
		}
		return createGalleryRows(tx, p.ID, gallery)
	})
	if err != nil {
		return err
	}
	p.Gallery = append([]string(nil), gallery...)
	return nil
}

// Delete removes the property row, its gallery rows, and writes the delete
// log entry in one transaction. File cleanup stays with the caller.
func (gdb *GormDB) Delete(id int64) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.Where("id = ?", id).First(&property).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return editor.ErrNotFound
			}
			return err
		}

		if err := tx.Where("property_id = ?", id).Delete(&models.PropertyImage{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&property).Error; err != nil {
			return err
		}

		deleteLog := models.DeleteLog{
			PropertyID: id,
			Name:       property.Name,
			Reason:     models.DeleteReasonManual,
		}
		return tx.Create(&deleteLog).Error
	})
}

// ReferencedImageFiles returns every filename some property still points
// at: main images plus gallery rows. Used by the orphan sweep.
func (gdb *GormDB) ReferencedImageFiles() ([]string, error) {
	var mains []string
	if err := gdb.db.Model(&models.Property{}).Pluck("main_image", &mains).Error; err != nil {
		return nil, err
	}
	var galleries []string
	if err := gdb.db.Model(&models.PropertyImage{}).Pluck("file_name", &galleries).Error; err != nil {
		return nil, err
	}
	return append(mains, galleries...), nil
}

// LogFileDeletion records an orphan sweep deletion
func (gdb *GormDB) LogFileDeletion(fileName string) error {
	return gdb.db.Create(&models.DeleteLog{
		FileName: fileName,
		Reason:   models.DeleteReasonOrphanSweep,
	}).Error
}

// RecentDeleteLogs returns the latest delete log entries
func (gdb *GormDB) RecentDeleteLogs(limit int) ([]models.DeleteLog, error) {
	var logs []models.DeleteLog
	err := gdb.db.Order("deleted_at DESC, id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

func createGalleryRows(tx *gorm.DB, propertyID int64, gallery []string) error {
	if len(gallery) == 0 {
		return nil
	}
	rows := make([]models.PropertyImage, 0, len(gallery))
	for i, name := range gallery {
		rows = append(rows, models.PropertyImage{
			PropertyID: propertyID,
			FileName:   name,
			SortOrder:  i,
		})
	}
	return tx.Create(&rows).Error
}
