package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/config"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/drive"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/storage"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newBcryptCostFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "bcrypt-cost",
		Value:   bcrypt.DefaultCost,
		EnvVars: []string{"AUTH_BCRYPT_COST"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*sql.DB, error) {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return nil, errors.New("database not initialized")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Prepare the dashboard database",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create or update the schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
			{
				Name:  "admin",
				Usage: "Create an admin account, or reset its password",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newBcryptCostFlag(),
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "name", Value: "Administrator"},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
				},
				Before: initDB,
				After:  closeDB,
				Action: runAdmin,
			},
			{
				Name:  "master",
				Usage: "Seed stores, links and users from a YAML file",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newBcryptCostFlag(),
					&cli.StringFlag{
						Name:    "file",
						Usage:   "Seed file",
						Value:   "./data/seeds/master.yaml",
						EnvVars: []string{"SEED_FILE"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runMaster,
			},
			{
				Name:  "import-drive",
				Usage: "Register every spreadsheet of a Drive folder as a link",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "credentials", Required: true, EnvVars: []string{"GOOGLE_DRIVE_CREDENTIALS_JSON"}},
					&cli.StringFlag{Name: "folder", Usage: "Folder id", EnvVars: []string{"GOOGLE_DRIVE_FOLDER_ID"}},
					&cli.StringFlag{Name: "path", Usage: "Folder path, e.g. Finance/P&L (overrides --folder)"},
				},
				Before: initDB,
				After:  closeDB,
				Action: runImportDrive,
			},
			{
				Name:  "import-s3",
				Usage: "Register every spreadsheet under a bucket prefix as a link (uses S3_* settings)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "bucket", Required: true},
					&cli.StringFlag{Name: "prefix"},
				},
				Before: initDB,
				After:  closeDB,
				Action: runImportS3,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runMigrate(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(c.Context, postgres.Schema()); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Println("Schema is up to date")
	return nil
}

func runAdmin(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	user := seedUser{
		Email:    c.String("email"),
		Name:     c.String("name"),
		Role:     domain.RoleAdmin,
		Password: c.String("password"),
	}
	f := &seedFile{Users: []seedUser{user}}
	if err := f.normalize(); err != nil {
		return err
	}

	tx, err := db.BeginTx(c.Context, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertUser(c.Context, tx, f.Users[0], c.Int("bcrypt-cost")); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	log.Printf("Admin %s ready\n", f.Users[0].Email)
	return nil
}

func runMaster(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	f, err := readSeedFile(c.String("file"))
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(c.Context, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, s := range f.Stores {
		if _, err := tx.ExecContext(c.Context, `
			INSERT INTO stores (id, name, store_code)
			VALUES ($1, $2, $3)
			ON CONFLICT (LOWER(name)) DO UPDATE
			SET store_code = EXCLUDED.store_code, updated_at = NOW()`,
			uuid.NewString(), s.Name, s.StoreID); err != nil {
			return fmt.Errorf("seed store %s: %w", s.Name, err)
		}
	}

	for _, l := range f.Links {
		if _, err := insertLink(c.Context, tx, l); err != nil {
			return err
		}
	}

	for _, u := range f.Users {
		if err := upsertUser(c.Context, tx, u, c.Int("bcrypt-cost")); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	log.Printf("Seeded %d stores, %d links, %d users\n", len(f.Stores), len(f.Links), len(f.Users))
	return nil
}

func runImportDrive(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	svc, err := drive.NewService(c.Context, c.String("credentials"))
	if err != nil {
		return err
	}

	folderID := c.String("folder")
	if p := strings.TrimSpace(c.String("path")); p != "" {
		if folderID, err = svc.FindFolderByPath(c.Context, p); err != nil {
			return err
		}
	}
	if folderID == "" {
		return errors.New("either --folder or --path is required")
	}

	files, err := svc.Spreadsheets(c.Context, folderID)
	if err != nil {
		return err
	}

	added := 0
	for _, f := range files {
		ok, err := insertLink(c.Context, db, seedLink{Name: drive.LinkName(f), URL: drive.LinkURL(f)})
		if err != nil {
			return err
		}
		if ok {
			added++
			log.Printf("Registered %s\n", f.Name)
		}
	}
	log.Printf("Imported %d of %d spreadsheets\n", added, len(files))
	return nil
}

func runImportS3(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	client, err := storage.NewMinioClient(config.Load().ObjectStore)
	if err != nil {
		return err
	}

	bucket := c.String("bucket")
	objects, err := client.ListObjects(c.Context, bucket, c.String("prefix"))
	if err != nil {
		return err
	}
	sheets := storage.Spreadsheets(objects)

	added := 0
	for _, o := range sheets {
		ok, err := insertLink(c.Context, db, seedLink{Name: storage.LinkName(o.Key), URL: storage.LinkURL(bucket, o.Key)})
		if err != nil {
			return err
		}
		if ok {
			added++
			log.Printf("Registered %s\n", o.Key)
		}
	}
	log.Printf("Imported %d of %d spreadsheets\n", added, len(sheets))
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertLink registers l unless a link with the same URL exists.
func insertLink(ctx context.Context, db execer, l seedLink) (bool, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO links (id, name, url)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (SELECT 1 FROM links WHERE url = $3)`,
		uuid.NewString(), l.Name, l.URL)
	if err != nil {
		return false, fmt.Errorf("seed link %s: %w", l.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func upsertUser(ctx context.Context, db execer, u seedUser, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
	if err != nil {
		return fmt.Errorf("hash password for %s: %w", u.Email, err)
	}
	stores := u.Stores
	if stores == nil {
		stores = []string{}
	}
	if _, err := db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, stores, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (LOWER(email)) DO UPDATE
		SET name = EXCLUDED.name,
		    role = EXCLUDED.role,
		    stores = EXCLUDED.stores,
		    password_hash = EXCLUDED.password_hash,
		    updated_at = NOW()`,
		uuid.NewString(), u.Email, u.Name, u.Role, stores, string(hash)); err != nil {
		return fmt.Errorf("seed user %s: %w", u.Email, err)
	}
	return nil
}
