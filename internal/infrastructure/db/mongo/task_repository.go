package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/psiborg/task-manager/internal/core/domain"
	"github.com/psiborg/task-manager/internal/core/ports"
)

const collectionTasks = "tasks"

var _ ports.TaskRepository = (*TaskRepository)(nil)

type TaskRepository struct {
	col *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks)}
}

type mongoTask struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Title      string             `bson:"title"`
	AssignedTo primitive.ObjectID `bson:"assignedTo"`
	CreatedBy  primitive.ObjectID `bson:"createdBy"`
	Priority   string             `bson:"priority"`
	Status     string             `bson:"status"`
	DueDate    *time.Time         `bson:"dueDate"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// populatedTask is the shape produced by listPipeline: the task plus the
// single-element arrays $lookup yields for its references.
type populatedTask struct {
	mongoTask `bson:",inline"`
	Assignee  []mongoUser `bson:"assignee"`
	Creator   []mongoUser `bson:"creator"`
}

func toMongoTask(t *domain.Task) (*mongoTask, error) {
	assignee, err := primitive.ObjectIDFromHex(t.AssignedTo)
	if err != nil {
		return nil, fmt.Errorf("%w: assignee id", domain.ErrInvalidInput)
	}
	creator, err := primitive.ObjectIDFromHex(t.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("%w: creator id", domain.ErrInvalidInput)
	}
	doc := &mongoTask{
		Title:      t.Title,
		AssignedTo: assignee,
		CreatedBy:  creator,
		Priority:   string(t.Priority),
		Status:     string(t.Status),
		DueDate:    t.DueDate,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
	if t.ID != "" {
		if doc.ID, err = primitive.ObjectIDFromHex(t.ID); err != nil {
			return nil, domain.ErrTaskNotFound
		}
	}
	return doc, nil
}

func (mt *mongoTask) toDomain() *domain.Task {
	return &domain.Task{
		ID:         mt.ID.Hex(),
		Title:      mt.Title,
		AssignedTo: mt.AssignedTo.Hex(),
		CreatedBy:  mt.CreatedBy.Hex(),
		Priority:   domain.Priority(mt.Priority),
		Status:     domain.TaskStatus(mt.Status),
		DueDate:    utcPtr(mt.DueDate),
		CreatedAt:  mt.CreatedAt.UTC(),
		UpdatedAt:  mt.UpdatedAt.UTC(),
	}
}

func (pt *populatedTask) toDetail() *domain.TaskDetail {
	d := &domain.TaskDetail{
		ID:        pt.ID.Hex(),
		Title:     pt.Title,
		Priority:  domain.Priority(pt.Priority),
		Status:    domain.TaskStatus(pt.Status),
		DueDate:   utcPtr(pt.DueDate),
		CreatedAt: pt.CreatedAt.UTC(),
		UpdatedAt: pt.UpdatedAt.UTC(),
	}
	if len(pt.Assignee) > 0 {
		s := pt.Assignee[0].toDomain().Summary()
		d.AssignedTo = &s
	}
	if len(pt.Creator) > 0 {
		s := pt.Creator[0].toDomain().Summary()
		d.CreatedBy = &s
	}
	return d
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Create inserts a new task document and sets task.ID.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toMongoTask(task)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	task.ID = doc.ID.Hex()
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	var doc mongoTask
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toDomain(), nil
}

// Update replaces the stored document with task.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toMongoTask(task)
	if err != nil {
		return err
	}
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTaskNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) FindDetail(ctx context.Context, id string) (*domain.TaskDetail, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	tasks, err := r.aggregate(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, domain.ErrTaskNotFound
	}
	return tasks[0], nil
}

func (r *TaskRepository) List(ctx context.Context, filter ports.TaskFilter) ([]*domain.TaskDetail, error) {
	match, ok := taskFilterToBSON(filter)
	if !ok {
		// A reference that is not an ObjectID cannot match any document.
		return []*domain.TaskDetail{}, nil
	}
	return r.aggregate(ctx, match)
}

func (r *TaskRepository) AssigneesOf(ctx context.Context, creatorID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(creatorID)
	if err != nil {
		return nil, nil
	}
	values, err := r.col.Distinct(ctx, "assignedTo", bson.M{"createdBy": oid})
	if err != nil {
		return nil, fmt.Errorf("distinct assignees: %w", err)
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			out = append(out, id.Hex())
		}
	}
	return out, nil
}

func (r *TaskRepository) aggregate(ctx context.Context, match bson.M) ([]*domain.TaskDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, listPipeline(match))
	if err != nil {
		return nil, fmt.Errorf("aggregate tasks: %w", err)
	}
	var docs []populatedTask
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	out := make([]*domain.TaskDetail, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDetail())
	}
	return out, nil
}

// taskFilterToBSON translates filter into a match document. It reports false
// when a reference field is set but is not a valid ObjectID.
func taskFilterToBSON(filter ports.TaskFilter) (bson.M, bool) {
	match := bson.M{}
	for field, id := range map[string]string{"createdBy": filter.CreatedBy, "assignedTo": filter.AssignedTo} {
		if id == "" {
			continue
		}
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, false
		}
		match[field] = oid
	}
	if filter.Status != "" {
		match["status"] = string(filter.Status)
	}
	if filter.Priority != "" {
		match["priority"] = string(filter.Priority)
	}
	return match, true
}

// listPipeline matches, orders by due date with missing dates last and
// populates assignee and creator.
func listPipeline(match bson.M) mongo.Pipeline {
	lookup := func(from, as string) bson.D {
		return bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionUsers},
			{Key: "localField", Value: from},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: as},
		}}}
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$addFields", Value: bson.D{{Key: "noDueDate", Value: bson.D{
			{Key: "$cond", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$dueDate", false}}}, 0, 1}},
		}}}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "noDueDate", Value: 1},
			{Key: "dueDate", Value: 1},
			{Key: "_id", Value: 1},
		}}},
		lookup("assignedTo", "assignee"),
		lookup("createdBy", "creator"),
		{{Key: "$project", Value: bson.D{{Key: "noDueDate", Value: 0}}}},
	}
}
