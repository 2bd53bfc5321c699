package migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upInit, downInit)
}

func upInit(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE tweets (
		id SERIAL PRIMARY KEY,
		tweet_id VARCHAR NOT NULL UNIQUE,
		handle VARCHAR NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		author_name VARCHAR NOT NULL DEFAULT '',
		author_username VARCHAR NOT NULL DEFAULT '',
		reply_count INTEGER NOT NULL DEFAULT 0,
		retweet_count INTEGER NOT NULL DEFAULT 0,
		like_count INTEGER NOT NULL DEFAULT 0,
		engagement INTEGER NOT NULL DEFAULT 0,
		url VARCHAR,
		sources TEXT[] NOT NULL DEFAULT '{}'
	);
	CREATE INDEX idx_tweets_handle_created_at ON tweets (handle, created_at);
	CREATE INDEX idx_tweets_created_at ON tweets (created_at);

	CREATE TABLE handles (
		id SERIAL PRIMARY KEY,
		handle VARCHAR NOT NULL UNIQUE,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downInit(tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP TABLE tweets;
	DROP TABLE handles;
	`)
	if err != nil {
		return err
	}
	return nil
}
