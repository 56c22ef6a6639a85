package db

import (
	"fmt"
	"log"
	"os"

	"github.com/MPfria02/Library-Management-System-sub001/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	err = Migrate(DB)
	if err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{}, &models.Credential{}, &models.Invite{},
		&models.Book{}, &models.BorrowRecord{}, &models.AuditLog{},
	); err != nil {
		return err
	}

	// 同一读者同一本书最多一条“在借”。应用层先查重，
	// 并发下两个请求同时看到“没借过”时由它兜底（冲突映射成 23505）
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_user_book
	  ON %s (user_id, book_id)
	  WHERE status = 'BORROWED';
	`, models.BorrowRecordTable, models.BorrowRecordTable)).Error; err != nil {
		return err
	}

	// 查某本书当前在借列表更快
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_book_borrowdate_desc
	  ON %s (book_id, borrow_date DESC)
	  WHERE status = 'BORROWED';
	`, models.BorrowRecordTable, models.BorrowRecordTable)).Error; err != nil {
		return err
	}

	return nil
}
