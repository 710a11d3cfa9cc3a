package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAccountRepository struct {
	collection *mongo.Collection
}

type dbAccount struct {
	ID        ID        `bson:"_id"`
	Username  string    `bson:"username"`
	Nickname  string    `bson:"nickname"`
	Password  string    `bson:"password"`
	CreatedAt time.Time `bson:"created_at"`
}

// NewMongoAccountRepository returns a Repository backed by c. It creates the
// unique indexes on username and nickname that Store relies on.
func NewMongoAccountRepository(ctx context.Context, c *mongo.Collection) (Repository, error) {
	_, err := c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("accounts_username_key"),
		},
		{
			Keys:    bson.D{{Key: "nickname", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("accounts_nickname_key"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating account indexes: %w", err)
	}

	return &mongoAccountRepository{collection: c}, nil
}

func (m *mongoAccountRepository) FindByName(ctx context.Context, username string) (*Account, error) {
	return m.findAccountBy(ctx, "username", username)
}

func (m *mongoAccountRepository) FindByNickname(ctx context.Context, nickname string) (*Account, error) {
	return m.findAccountBy(ctx, "nickname", nickname)
}

func (m *mongoAccountRepository) FindByID(ctx context.Context, id ID) (*Account, error) {
	return m.findAccountBy(ctx, "_id", string(id))
}

func (m *mongoAccountRepository) findAccountBy(ctx context.Context, key string, val string) (*Account, error) {
	var a dbAccount
	sr := m.collection.FindOne(ctx, bson.M{key: val})

	if errors.Is(sr.Err(), mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}

	if err := sr.Decode(&a); err != nil {
		return nil, err
	}

	acc := accountFromDBAccount(a)
	return &acc, nil
}

func (m *mongoAccountRepository) Store(ctx context.Context, acc *Account) error {
	dba := dbAccountFromAccount(acc)
	_, err := m.collection.InsertOne(ctx, &dba)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func dbAccountFromAccount(a *Account) dbAccount {
	c := a.Credentials
	return dbAccount{a.ID, c.Username, c.Nickname, c.Password, a.CreatedAt}
}

func accountFromDBAccount(a dbAccount) Account {
	c := Credentials{Username: a.Username, Nickname: a.Nickname, Password: a.Password}
	return Account{ID: a.ID, Credentials: c, CreatedAt: a.CreatedAt}
}
