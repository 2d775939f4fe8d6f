package main

import (
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookreview/internal/config"
	"bookreview/internal/database"
	"bookreview/internal/domain"
	"bookreview/internal/pkg/logger"
	"bookreview/internal/pkg/slug"
)

const seedPassword = "Seed-Passw0rd!"

type seedBook struct {
	title     string
	author    string
	language  domain.Language
	pages     int
	published string
	summary   string
}

var books = []seedBook{
	{"The Quiet Harbour", "marta", domain.LanguageEnglish, 312, "2019-04-12", "A lighthouse keeper and the town that forgot him."},
	{"Salt and Iron", "marta", domain.LanguageEnglish, 450, "2021-09-01", "Two families, one shipyard, a century of rivalry."},
	{"Las horas largas", "diego", domain.LanguageSpanish, 228, "2017-02-20", "Una novela sobre la espera."},
	{"Notes from the Steppe", "diego", domain.LanguageEnglish, 190, "2023-06-15", "Travel essays from Central Asia."},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	if !database.IsPostgres(cfg.DatabaseURL) {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal("AutoMigrate failed:", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}

	log.Println("Creating users...")
	users := map[string]*domain.User{}
	for _, u := range []struct {
		username string
		role     domain.UserRole
	}{
		{"admin", domain.RoleAdmin},
		{"marta", domain.RoleAuthor},
		{"diego", domain.RoleAuthor},
		{"aliya", domain.RoleReviewer},
		{"tom", domain.RoleReviewer},
		{"reader", domain.RoleOther},
	} {
		user, err := upsertUser(db, u.username, u.role, string(hash))
		if err != nil {
			log.Fatalf("user %s: %v", u.username, err)
		}
		users[u.username] = user
	}

	log.Println("Creating books...")
	var created []*domain.Book
	for _, sb := range books {
		b, err := upsertBook(db, sb, users[sb.author].ID)
		if err != nil {
			log.Fatalf("book %q: %v", sb.title, err)
		}
		created = append(created, b)
	}

	log.Println("Creating reviews and favorites...")
	for i, b := range created {
		for j, reviewer := range []string{"aliya", "tom"} {
			r := domain.Review{
				BookID:     b.ID,
				ReviewerID: users[reviewer].ID,
				Title:      "Thoughts on " + b.Title,
				Content:    "Worth the time.",
				Rating:     1 + (i+j*2)%5,
				IsTrusted:  reviewer == "aliya",
			}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&r).Error; err != nil {
				log.Fatalf("review: %v", err)
			}
		}
		f := domain.Favorite{
			UserID: users["reader"].ID,
			BookID: b.ID,
			Reason: domain.FavoriteReason(i % 8),
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&f).Error; err != nil {
			log.Fatalf("favorite: %v", err)
		}
	}

	log.Println("Seed completed!")
	log.Printf("Accounts: admin, marta, diego, aliya, tom, reader / %s", seedPassword)
}

func upsertUser(db *gorm.DB, username string, role domain.UserRole, hash string) (*domain.User, error) {
	u := &domain.User{
		Username:     username,
		Email:        username + "@bookreview.local",
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "role", "is_active"}),
	}).Create(u).Error
	if err != nil {
		return nil, err
	}
	return u, db.Where("username = ?", username).First(u).Error
}

func upsertBook(db *gorm.DB, sb seedBook, authorID int64) (*domain.Book, error) {
	published, err := time.Parse("2006-01-02", sb.published)
	if err != nil {
		return nil, err
	}
	pages := sb.pages
	b := &domain.Book{
		Title:           sb.title,
		Slug:            slug.Make(sb.title),
		AuthorID:        authorID,
		Description:     sb.summary,
		Language:        sb.language,
		Pages:           &pages,
		PublicationDate: published,
		IsAvailable:     true,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(b).Error; err != nil {
		return nil, err
	}
	return b, db.Where("slug = ?", b.Slug).First(b).Error
}
