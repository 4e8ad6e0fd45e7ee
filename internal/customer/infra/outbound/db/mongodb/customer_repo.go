package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	customerDomain "github.com/posalpro/posalpro/internal/customer/domain"
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CustomerRepoMongoDB implementa la interfaz CustomerRepository para MongoDB.
type CustomerRepoMongoDB struct {
	client        *mongo.Client
	dbName        string
	customersColl *mongo.Collection
	outboxColl    *mongo.Collection
}

// NewCustomerRepoMongoDB es el constructor del repositorio.
func NewCustomerRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*CustomerRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}

	db := client.Database(dbName)
	return &CustomerRepoMongoDB{
		client:        client,
		dbName:        dbName,
		customersColl: db.Collection("customers"),
		outboxColl:    db.Collection("outbox"),
	}, nil
}

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags de BSON.
// Los campos son punteros: con proyección activa solo se decodifica el
// subconjunto pedido y el resto queda en nil.

type mongoCustomer struct {
	ID        uuid.UUID  `bson:"_id"`
	Name      *string    `bson:"name,omitempty"`
	Email     *string    `bson:"email,omitempty"`
	Tier      *string    `bson:"tier,omitempty"`
	Industry  *string    `bson:"industry,omitempty"`
	Status    *string    `bson:"status,omitempty"`
	CreatedAt *time.Time `bson:"createdAt,omitempty"`
	UpdatedAt *time.Time `bson:"updatedAt,omitempty"`
}

type mongoOutboxEvent struct {
	ID            uuid.UUID   `bson:"_id"`
	AggregateType string      `bson:"aggregateType"`
	AggregateID   string      `bson:"aggregateId"`
	EventType     string      `bson:"eventType"`
	Payload       interface{} `bson:"payload"`
	CreatedAt     time.Time   `bson:"createdAt"`
	Processed     bool        `bson:"processed"`
}

// bsonField traduce los nombres de campo expuestos (snake_case) a las claves
// de la colección (camelCase). Devuelve la clave tal cual si no hay mapeo.
func bsonField(field string) string {
	switch field {
	case "id":
		return "_id"
	case "created_at":
		return "createdAt"
	case "updated_at":
		return "updatedAt"
	default:
		return field
	}
}

// --- CRUD Transaccional ---

func (r *CustomerRepoMongoDB) Create(ctx context.Context, c *customerDomain.Customer, evt sharedDomain.OutboxEvent) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	// La transacción asegura que ambas inserciones (cliente y evento) sean atómicas.
	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		mc := toMongoCustomer(c)
		if _, err := r.customersColl.InsertOne(sessCtx, mc); err != nil {
			return nil, err
		}
		mo := toMongoOutboxEvent(evt)
		if _, err := r.outboxColl.InsertOne(sessCtx, mo); err != nil {
			return nil, err
		}
		return nil, nil
	})

	return err
}

func (r *CustomerRepoMongoDB) Update(ctx context.Context, c *customerDomain.Customer, evt sharedDomain.OutboxEvent) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		mc := toMongoCustomer(c)
		filter := bson.M{"_id": mc.ID}
		update := bson.M{"$set": mc}

		res, err := r.customersColl.UpdateOne(sessCtx, filter, update)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, customerDomain.ErrCustomerNotFound
		}

		mo := toMongoOutboxEvent(evt)
		if _, err := r.outboxColl.InsertOne(sessCtx, mo); err != nil {
			return nil, err
		}

		return nil, nil
	})

	return err
}

func (r *CustomerRepoMongoDB) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		res, err := r.customersColl.DeleteOne(sessCtx, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, customerDomain.ErrCustomerNotFound
		}

		mo := toMongoOutboxEvent(evt)
		if _, err := r.outboxColl.InsertOne(sessCtx, mo); err != nil {
			return nil, err
		}

		return nil, nil
	})

	return err
}

// --- Lectura ---

func (r *CustomerRepoMongoDB) GetByID(ctx context.Context, id uuid.UUID) (*customerDomain.Customer, error) {
	var mc mongoCustomer
	err := r.customersColl.FindOne(ctx, bson.M{"_id": id}).Decode(&mc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, customerDomain.ErrCustomerNotFound
		}
		return nil, err
	}
	return fromMongoCustomer(&mc), nil
}

// FetchPage emite la consulta de página: proyección vía SetProjection,
// predicado keyset como $or y orden (campo, _id).
func (r *CustomerRepoMongoDB) FetchPage(ctx context.Context, criteria sharedDomain.Criteria, spec sharedQuery.FetchSpec) ([]*customerDomain.Customer, error) {
	filter := criteriaToMongoFilter(criteria)

	if keysetFilter := keysetToMongoFilter(spec.Keyset); keysetFilter != nil {
		filter = bson.D{{Key: "$and", Value: bson.A{filter, keysetFilter}}}
	}

	opts := options.Find()

	// Proyección: solo los campos del spec viajan desde el almacén.
	projection := bson.D{}
	for _, f := range spec.Selection.Fields {
		projection = append(projection, bson.E{Key: bsonField(f), Value: 1})
	}
	opts.SetProjection(projection)

	// Ordenación total (campo, _id) en la misma dirección.
	sortDir := 1
	if spec.Sort.Desc {
		sortDir = -1
	}
	opts.SetSort(bson.D{
		{Key: bsonField(spec.Sort.Field), Value: sortDir},
		{Key: "_id", Value: sortDir},
	})

	opts.SetLimit(int64(spec.Limit))
	if spec.Offset > 0 {
		opts.SetSkip(int64(spec.Offset))
	}

	cursor, err := r.customersColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var customers []*customerDomain.Customer
	for cursor.Next(ctx) {
		var mc mongoCustomer
		if err := cursor.Decode(&mc); err != nil {
			return nil, err
		}
		customers = append(customers, fromMongoCustomer(&mc))
	}

	return customers, cursor.Err()
}

func (r *CustomerRepoMongoDB) CountByCriteria(ctx context.Context, criteria sharedDomain.Criteria) (int, error) {
	total, err := r.customersColl.CountDocuments(ctx, criteriaToMongoFilter(criteria))
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

// --- Helpers de Mapeo y Conversión ---

func toMongoCustomer(c *customerDomain.Customer) *mongoCustomer {
	name := c.Name
	email := c.Email
	tier := string(c.Tier)
	industry := c.Industry
	status := string(c.Status)
	return &mongoCustomer{
		ID: c.ID, Name: &name, Email: &email, Tier: &tier,
		Industry: &industry, Status: &status,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

// fromMongoCustomer vuelca al dominio solo los campos decodificados.
func fromMongoCustomer(mc *mongoCustomer) *customerDomain.Customer {
	c := &customerDomain.Customer{ID: mc.ID}
	if mc.Name != nil {
		c.Name = *mc.Name
	}
	if mc.Email != nil {
		c.Email = *mc.Email
	}
	if mc.Tier != nil {
		c.Tier = customerDomain.CustomerTier(*mc.Tier)
	}
	if mc.Industry != nil {
		c.Industry = *mc.Industry
	}
	if mc.Status != nil {
		c.Status = customerDomain.CustomerStatus(*mc.Status)
	}
	c.CreatedAt = mc.CreatedAt
	c.UpdatedAt = mc.UpdatedAt
	return c
}

func toMongoOutboxEvent(evt sharedDomain.OutboxEvent) *mongoOutboxEvent {
	return &mongoOutboxEvent{
		ID: evt.ID, AggregateType: evt.AggregateType, AggregateID: evt.AggregateID,
		EventType: evt.EventType, Payload: evt.Payload, CreatedAt: evt.CreatedAt, Processed: false,
	}
}

// keysetToMongoFilter traduce el ancla (valor, id) al predicado de
// continuación. Los campos de Customer no admiten NULL, pero se conserva la
// rama de ancla nula por simetría con los adaptadores SQL.
func keysetToMongoFilter(k *sharedQuery.Keyset) bson.M {
	if k == nil {
		return nil
	}

	op := "$gt"
	if k.Desc {
		op = "$lt"
	}

	field := bsonField(k.Field)

	if k.SortValue == nil {
		return bson.M{field: nil, "_id": bson.M{op: k.ID}}
	}

	return bson.M{"$or": bson.A{
		bson.M{field: bson.M{op: k.SortValue}},
		bson.M{field: k.SortValue, "_id": bson.M{op: k.ID}},
	}}
}

func criteriaToMongoFilter(criteria sharedDomain.Criteria) bson.D {
	if criteria == nil {
		return bson.D{}
	}
	conds := criteria.ToConditions()
	if len(conds) == 0 {
		return bson.D{}
	}

	filter := bson.D{}
	for _, c := range conds {
		// Mapeo de operadores genéricos a operadores de MongoDB
		var mongoOp string
		switch c.Op {
		case sharedDomain.OpEq:
			mongoOp = "$eq"
		case sharedDomain.OpGt:
			mongoOp = "$gt"
		case sharedDomain.OpGte:
			mongoOp = "$gte"
		case sharedDomain.OpLt:
			mongoOp = "$lt"
		case sharedDomain.OpLte:
			mongoOp = "$lte"
		case sharedDomain.OpLike, sharedDomain.OpILike:
			mongoOp = "$regex"
		default:
			mongoOp = "$eq"
		}

		field := bsonField(c.Field)

		// Para ILIKE, añadimos la opción 'i' de insensibilidad a mayúsculas
		if c.Op == sharedDomain.OpILike {
			filter = append(filter, bson.E{Key: field, Value: bson.M{mongoOp: strings.Trim(c.Value.(string), "%"), "$options": "i"}})
		} else {
			filter = append(filter, bson.E{Key: field, Value: bson.M{mongoOp: c.Value}})
		}
	}
	return filter
}

// Verificación estática
var _ customerDomain.CustomerRepository = (*CustomerRepoMongoDB)(nil)
