// Package registry persists chatbot configurations. Branding is a typed
// struct with named fields and documented defaults; only per-chunk metadata
// stays an open map.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"chatbot-rag/internal/config"
)

// Branding holds the widget appearance settings for one chatbot.
type Branding struct {
	PrimaryColor   string `bun:"primary_color" json:"primary_color"`
	SecondaryColor string `bun:"secondary_color" json:"secondary_color"`
	LogoURL        string `bun:"logo_url" json:"logo_url,omitempty"`
	WelcomeMessage string `bun:"welcome_message" json:"welcome_message"`
}

// DefaultBranding returns the documented branding defaults for a bot name.
func DefaultBranding(name string) Branding {
	return Branding{
		PrimaryColor:   "#1f3a93",
		SecondaryColor: "#34495e",
		WelcomeMessage: fmt.Sprintf("Hello! I am %s, your personal assistant.", name),
	}
}

// Chatbot is one tenant: a named bot with its sources and branding. The
// index bundle itself lives on disk under the bot's ID.
type Chatbot struct {
	bun.BaseModel `bun:"table:chatbots,alias:c"`

	ID          string    `bun:"id,pk"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description"`
	WebsiteURL  string    `bun:"website_url"`
	Documents   []string  `bun:"documents,array"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	Branding    Branding  `bun:"embed:branding_"`
}

func ConnectDB(cfg *config.DBConfig) *sql.DB {
	return sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithPassword(cfg.Password),
	))
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(debug)))
	return db
}

func InitDB(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*Chatbot)(nil)).IfNotExists().Exec(ctx)
	return err
}

func SaveChatbot(ctx context.Context, db *bun.DB, bot *Chatbot) error {
	_, err := db.NewInsert().Model(bot).On("CONFLICT (id) DO UPDATE").Exec(ctx)
	return err
}

func GetChatbot(ctx context.Context, db *bun.DB, id string) (*Chatbot, error) {
	bot := new(Chatbot)
	err := db.NewSelect().Model(bot).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bot, nil
}

func ListChatbots(ctx context.Context, db *bun.DB) ([]Chatbot, error) {
	var bots []Chatbot
	err := db.NewSelect().Model(&bots).Order("created_at DESC").Scan(ctx)
	return bots, err
}

func DeleteChatbot(ctx context.Context, db *bun.DB, id string) error {
	_, err := db.NewDelete().Model((*Chatbot)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}
