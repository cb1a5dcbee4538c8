package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "b1prep_user")
	password := getEnv("DB_PASSWORD", "b1prep_password")
	dbname := getEnv("DB_NAME", "b1prep")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		current_level VARCHAR(10) NOT NULL DEFAULT 'A1.1',
		exam_date DATE,
		daily_goal_minutes INT NOT NULL DEFAULT 15,
		streak_current INT NOT NULL DEFAULT 0,
		streak_longest INT NOT NULL DEFAULT 0,
		last_practice_date TIMESTAMP WITH TIME ZONE,
		has_completed_placement BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS grammar_topics (
		id             SERIAL PRIMARY KEY,
		slug           VARCHAR(100) UNIQUE NOT NULL,
		name_de        VARCHAR(255) NOT NULL,
		name_en        VARCHAR(255) NOT NULL,
		level          VARCHAR(2) NOT NULL,
		description_de TEXT,
		description_en TEXT,
		order_index    INT NOT NULL,
		weight         REAL NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS topic_assessments (
		id                BIGSERIAL PRIMARY KEY,
		user_id           BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		topic_id          INT NOT NULL REFERENCES grammar_topics(id),
		questions_asked   INT NOT NULL DEFAULT 0,
		questions_correct INT NOT NULL DEFAULT 0,
		mastery_level     VARCHAR(20) NOT NULL DEFAULT 'not_assessed',
		confidence_score  REAL NOT NULL DEFAULT 0,
		last_assessed_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(user_id, topic_id)
	);

	CREATE TABLE IF NOT EXISTS placement_results (
		id                 BIGSERIAL PRIMARY KEY,
		user_id            BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		overall_level      VARCHAR(10) NOT NULL,
		total_questions    INT NOT NULL,
		correct_answers    INT NOT NULL,
		time_taken_seconds INT NOT NULL DEFAULT 0,
		completed_at       TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS learning_path (
		id                 BIGSERIAL PRIMARY KEY,
		user_id            BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		topic_id           INT NOT NULL REFERENCES grammar_topics(id),
		priority           INT NOT NULL,
		status             VARCHAR(20) NOT NULL DEFAULT 'pending',
		estimated_sessions INT NOT NULL DEFAULT 1,
		completed_sessions INT NOT NULL DEFAULT 0,
		target_mastery     REAL NOT NULL DEFAULT 0.8,
		UNIQUE(user_id, topic_id)
	);

	CREATE TABLE IF NOT EXISTS user_topic_progress (
		id               BIGSERIAL PRIMARY KEY,
		user_id          BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		topic_id         INT NOT NULL REFERENCES grammar_topics(id),
		difficulty_level INT NOT NULL DEFAULT 2 CHECK (difficulty_level >= 1 AND difficulty_level <= 5),
		attempts         INT NOT NULL DEFAULT 0,
		correct          INT NOT NULL DEFAULT 0,
		proficiency      INT NOT NULL DEFAULT 0 CHECK (proficiency >= 0 AND proficiency <= 100),
		last_practiced   TIMESTAMP WITH TIME ZONE,
		UNIQUE(user_id, topic_id)
	);

	CREATE TABLE IF NOT EXISTS vocabulary (
		id                  BIGSERIAL PRIMARY KEY,
		user_id             BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		word_de             VARCHAR(255) NOT NULL,
		word_en             VARCHAR(255) NOT NULL,
		gender              VARCHAR(3),
		part_of_speech      VARCHAR(30),
		example_sentence_de TEXT,
		example_sentence_en TEXT,
		ease_factor         REAL NOT NULL DEFAULT 2.5,
		interval_days       INT NOT NULL DEFAULT 1,
		next_review         TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		review_count        INT NOT NULL DEFAULT 0,
		consecutive_correct INT NOT NULL DEFAULT 0,
		created_at          TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(user_id, word_de)
	);

	CREATE TABLE IF NOT EXISTS exercise_history (
		id                 BIGSERIAL PRIMARY KEY,
		user_id            BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		exercise_type      VARCHAR(30) NOT NULL,
		topic_id           INT REFERENCES grammar_topics(id),
		prompt_en          TEXT,
		prompt_de          TEXT,
		correct_answer     TEXT NOT NULL,
		user_answer        TEXT,
		was_correct        BOOLEAN,
		time_taken_seconds REAL,
		difficulty_level   INT,
		session_id         VARCHAR(64),
		created_at         TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS daily_sessions (
		id                  BIGSERIAL PRIMARY KEY,
		user_id             BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		session_date        VARCHAR(10) NOT NULL,
		minutes_practiced   INT NOT NULL DEFAULT 0,
		exercises_completed INT NOT NULL DEFAULT 0,
		exercises_correct   INT NOT NULL DEFAULT 0,
		started_at          TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		ended_at            TIMESTAMP WITH TIME ZONE,
		UNIQUE(user_id, session_date)
	);

	CREATE TABLE IF NOT EXISTS tutor_messages (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role       VARCHAR(10) NOT NULL,
		content    TEXT NOT NULL,
		topic_id   INT REFERENCES grammar_topics(id),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS generated_exercises (
		id            BIGSERIAL PRIMARY KEY,
		topic_id      INT NOT NULL REFERENCES grammar_topics(id),
		exercise_type VARCHAR(30) NOT NULL,
		difficulty    INT NOT NULL,
		payload       JSONB NOT NULL,
		created_at    TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS generation_queue (
		id            BIGSERIAL PRIMARY KEY,
		topic_id      INT NOT NULL REFERENCES grammar_topics(id),
		exercise_type VARCHAR(30) NOT NULL,
		difficulty    INT NOT NULL,
		needed        INT NOT NULL DEFAULT 3,
		status        VARCHAR(20) NOT NULL DEFAULT 'pending',
		error_message TEXT,
		created_at    TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		completed_at  TIMESTAMP WITH TIME ZONE
	);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Idempotent column additions for databases created by earlier builds.
	alterStatements := []string{
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS exam_date DATE`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS daily_goal_minutes INT NOT NULL DEFAULT 15`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS has_completed_placement BOOLEAN NOT NULL DEFAULT FALSE`,
		`ALTER TABLE exercise_history ADD COLUMN IF NOT EXISTS session_id VARCHAR(64)`,
		`ALTER TABLE learning_path ADD COLUMN IF NOT EXISTS target_mastery REAL NOT NULL DEFAULT 0.8`,
	}
	for _, stmt := range alterStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("alter table failed: %w", err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_topics_level ON grammar_topics(level, order_index)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_user ON topic_assessments(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_placements_user ON placement_results(user_id, completed_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_path_user ON learning_path(user_id, priority)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_user ON user_topic_progress(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_vocab_due ON vocabulary(user_id, next_review)`,
		`CREATE INDEX IF NOT EXISTS idx_history_user_topic ON exercise_history(user_id, topic_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON daily_sessions(user_id, session_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_tutor_user ON tutor_messages(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_genex_bucket ON generated_exercises(topic_id, exercise_type, difficulty)`,
		`CREATE INDEX IF NOT EXISTS idx_genqueue_status ON generation_queue(status)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create index failed: %w", err)
		}
	}

	if err := seedTopics(db); err != nil {
		return fmt.Errorf("seed topics: %w", err)
	}

	return nil
}

type topicSeed struct {
	slug   string
	nameDE string
	nameEN string
	level  string
	order  int
	weight float64
}

// The B1 curriculum. Weights reflect exam importance.
var topicSeeds = []topicSeed{
	// A1
	{"artikel", "Bestimmte und unbestimmte Artikel", "Definite and indefinite articles", "A1", 1, 1},
	{"praesens", "Praesens", "Present tense", "A1", 2, 1},
	{"personalpronomen", "Personalpronomen", "Personal pronouns", "A1", 3, 1},
	{"satzstellung", "Satzstellung im Hauptsatz", "Main clause word order", "A1", 4, 1.5},
	{"negation", "Negation mit nicht und kein", "Negation with nicht and kein", "A1", 5, 1},
	{"akkusativ", "Akkusativ", "Accusative case", "A1", 6, 1.5},
	{"modalverben", "Modalverben", "Modal verbs", "A1", 7, 1.5},
	{"trennbare-verben", "Trennbare Verben", "Separable verbs", "A1", 8, 1},
	// A2
	{"dativ", "Dativ", "Dative case", "A2", 1, 2},
	{"perfekt", "Perfekt", "Present perfect", "A2", 2, 2},
	{"praeteritum-haben-sein", "Praeteritum von haben und sein", "Simple past of haben and sein", "A2", 3, 1},
	{"wechselpraepositionen", "Wechselpraepositionen", "Two-way prepositions", "A2", 4, 1.5},
	{"komparativ", "Komparativ und Superlativ", "Comparative and superlative", "A2", 5, 1},
	{"nebensaetze-weil-dass", "Nebensaetze mit weil und dass", "Subordinate clauses with weil and dass", "A2", 6, 2},
	{"reflexive-verben", "Reflexive Verben", "Reflexive verbs", "A2", 7, 1},
	{"imperativ", "Imperativ", "Imperative", "A2", 8, 1},
	// B1
	{"praeteritum", "Praeteritum", "Simple past", "B1", 1, 2},
	{"genitiv", "Genitiv", "Genitive case", "B1", 2, 1},
	{"relativsaetze", "Relativsaetze", "Relative clauses", "B1", 3, 2},
	{"passiv", "Passiv", "Passive voice", "B1", 4, 2},
	{"konjunktiv2", "Konjunktiv II", "Subjunctive II", "B1", 5, 2},
	{"adjektivdeklination", "Adjektivdeklination", "Adjective declension", "B1", 6, 2},
	{"infinitiv-zu", "Infinitiv mit zu", "Infinitive with zu", "B1", 7, 1},
	{"plusquamperfekt", "Plusquamperfekt", "Past perfect", "B1", 8, 1},
	{"futur1", "Futur I", "Future tense", "B1", 9, 1},
	{"indirekte-fragen", "Indirekte Fragen", "Indirect questions", "B1", 10, 1.5},
}

// seedTopics inserts the topic catalog. Upsert by slug so name or weight
// fixes ship with a deploy.
func seedTopics(db *sql.DB) error {
	for _, t := range topicSeeds {
		_, err := db.Exec(
			`INSERT INTO grammar_topics (slug, name_de, name_en, level, order_index, weight)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (slug)
			 DO UPDATE SET name_de = $2, name_en = $3, level = $4, order_index = $5, weight = $6`,
			t.slug, t.nameDE, t.nameEN, t.level, t.order, t.weight,
		)
		if err != nil {
			return fmt.Errorf("seed topic %s: %w", t.slug, err)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
