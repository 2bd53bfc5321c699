package migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upScripts, downScripts)
}

func upScripts(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE script_selections (
		id SERIAL PRIMARY KEY,
		tweet_id VARCHAR NOT NULL UNIQUE,
		handle VARCHAR NOT NULL,
		reasoning TEXT NOT NULL DEFAULT '',
		scope VARCHAR NOT NULL DEFAULT '',
		added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE scripts (
		id SERIAL PRIMARY KEY,
		model VARCHAR NOT NULL,
		prompt TEXT NOT NULL,
		output TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE prompt_templates (
		id SERIAL PRIMARY KEY,
		name VARCHAR NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downScripts(tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP TABLE script_selections;
	DROP TABLE scripts;
	DROP TABLE prompt_templates;
	`)
	if err != nil {
		return err
	}
	return nil
}
