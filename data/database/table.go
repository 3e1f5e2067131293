package database

import "go.mongodb.org/mongo-driver/mongo"

// Table 文档模型自报集合名
type Table interface {
	GetTableName() string
}

// CollectionOf 按模型取集合
func CollectionOf(db *mongo.Database, t Table) *mongo.Collection {
	return db.Collection(t.GetTableName())
}
