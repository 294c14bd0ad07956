package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4j is a Store backed by a Neo4j graph. Users own tasks through
// (:User)-[:OWNS]->(:Task) relationships.
type Neo4j struct {
	driver neo4j.DriverWithContext
	now    func() time.Time
}

const constraintFailed = "Neo.ClientError.Schema.ConstraintValidationFailed"

// OpenNeo4j connects to uri, verifies connectivity and ensures the schema
// constraints exist.
func OpenNeo4j(ctx context.Context, uri, user, password string) (*Neo4j, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	s := &Neo4j{driver: driver, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Neo4j) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE CONSTRAINT user_email IF NOT EXISTS FOR (u:User) REQUIRE u.email IS UNIQUE",
		"CREATE CONSTRAINT user_id IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE",
		"CREATE CONSTRAINT task_id IF NOT EXISTS FOR (t:Task) REQUIRE t.id IS UNIQUE",
	}
	for _, stmt := range stmts {
		if _, err := s.write(ctx, stmt, nil); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func (s *Neo4j) CreateUser(ctx context.Context, u User) (User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	_, err := s.write(ctx,
		"CREATE (u:User {id: $id, email: $email, name: $name, passwordHash: $hash, createdAt: $createdAt})",
		map[string]any{
			"id":        u.ID,
			"email":     u.Email,
			"name":      u.Name,
			"hash":      u.PasswordHash,
			"createdAt": u.CreatedAt.UnixNano(),
		})
	if err != nil {
		var nerr *neo4j.Neo4jError
		if errors.As(err, &nerr) && nerr.Code == constraintFailed {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *Neo4j) UserByEmail(ctx context.Context, email string) (User, error) {
	records, err := s.read(ctx,
		"MATCH (u:User {email: $email}) "+
			"RETURN u.id AS id, u.email AS email, u.name AS name, u.passwordHash AS hash, u.createdAt AS createdAt",
		map[string]any{"email": normalizeEmail(email)})
	if err != nil {
		return User{}, fmt.Errorf("failed to query user: %w", err)
	}
	if len(records) == 0 {
		return User{}, ErrNotFound
	}
	m := records[0].AsMap()
	return User{
		ID:           asString(m["id"]),
		Email:        asString(m["email"]),
		Name:         asString(m["name"]),
		PasswordHash: asString(m["hash"]),
		CreatedAt:    asTime(m["createdAt"]),
	}, nil
}

const taskFields = "t.id AS id, u.id AS userId, t.title AS title, t.description AS description, " +
	"t.completed AS completed, t.createdAt AS createdAt"

func (s *Neo4j) ListTasks(ctx context.Context, userID string) ([]Task, error) {
	records, err := s.read(ctx,
		"MATCH (u:User {id: $userId})-[:OWNS]->(t:Task) "+
			"RETURN "+taskFields+" ORDER BY t.createdAt DESC",
		map[string]any{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	tasks := make([]Task, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, taskFromRecord(rec))
	}
	return tasks, nil
}

func (s *Neo4j) CreateTask(ctx context.Context, t Task) (Task, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}
	records, err := s.write(ctx,
		"MATCH (u:User {id: $userId}) "+
			"CREATE (u)-[:OWNS]->(t:Task {id: $id, title: $title, description: $description, completed: $completed, createdAt: $createdAt}) "+
			"RETURN t.id AS id",
		map[string]any{
			"userId":      t.UserID,
			"id":          t.ID,
			"title":       t.Title,
			"description": t.Description,
			"completed":   t.Completed,
			"createdAt":   t.CreatedAt.UnixNano(),
		})
	if err != nil {
		return Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	if len(records) == 0 {
		return Task{}, ErrNotFound
	}
	return t, nil
}

func (s *Neo4j) UpdateTask(ctx context.Context, userID, id string, upd TaskUpdate) (Task, error) {
	records, err := s.write(ctx,
		"MATCH (u:User {id: $userId})-[:OWNS]->(t:Task {id: $id}) "+
			"SET t.title = coalesce($title, t.title), "+
			"t.description = coalesce($description, t.description), "+
			"t.completed = coalesce($completed, t.completed) "+
			"RETURN "+taskFields,
		map[string]any{
			"userId":      userID,
			"id":          id,
			"title":       param(upd.Title),
			"description": param(upd.Description),
			"completed":   param(upd.Completed),
		})
	if err != nil {
		return Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	if len(records) == 0 {
		return Task{}, ErrNotFound
	}
	return taskFromRecord(records[0]), nil
}

func (s *Neo4j) DeleteTask(ctx context.Context, userID, id string) error {
	records, err := s.write(ctx,
		"MATCH (u:User {id: $userId})-[:OWNS]->(t:Task {id: $id}) "+
			"DETACH DELETE t RETURN count(*) AS n",
		map[string]any{"userId": userID, "id": id})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if len(records) == 0 {
		return ErrNotFound
	}
	if n, _ := records[0].AsMap()["n"].(int64); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Neo4j) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

func (s *Neo4j) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4j) read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*neo4j.Record), nil
}

func (s *Neo4j) write(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*neo4j.Record), nil
}

func taskFromRecord(rec *neo4j.Record) Task {
	m := rec.AsMap()
	completed, _ := m["completed"].(bool)
	return Task{
		ID:          asString(m["id"]),
		UserID:      asString(m["userId"]),
		Title:       asString(m["title"]),
		Description: asString(m["description"]),
		Completed:   completed,
		CreatedAt:   asTime(m["createdAt"]),
	}
}

// param turns a nil pointer into a Cypher null.
func param[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asTime(v any) time.Time {
	n, ok := v.(int64)
	if !ok {
		return time.Time{}
	}
	return fromNanos(n)
}
