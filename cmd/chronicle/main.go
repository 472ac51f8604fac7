// Command chronicle is a demonstration front-end over the chronicledb
// package: it opens a store, and — since parsing Datalog query text is an
// explicit Non-goal of this repository — loads a small fixed dataset and
// runs a handful of built-in queries against it the same way the teacher's
// demo mode does when it finds an empty database (spec §6: "there is no
// textual parser in this repository").
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"

	"github.com/wbrown/chronicle/chronicledb"
	"github.com/wbrown/chronicle/fact"
	"github.com/wbrown/chronicle/query"
	"github.com/wbrown/chronicle/tx"
)

func main() {
	var dbPath string
	var help bool

	flag.StringVar(&dbPath, "db", "chronicle.db", "database path")
	flag.BoolVar(&help, "h", false, "show help")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "An immutable, temporal EAV triple store.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}

	db, err := chronicledb.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	latestTx, err := db.LatestTx()
	if err != nil {
		log.Fatalf("failed to read latest transaction: %v", err)
	}

	if latestTx <= schemaOnlyFloor {
		color.Green("Database is empty, loading demo data...")
		runDemo(db)
		return
	}

	color.Yellow("Database at %s already contains data; re-run against an empty path to see the demo.", dbPath)
}

// schemaOnlyFloor is the highest entity id the well-known bootstrap
// attributes occupy; a store at or below it has never committed a real
// transaction.
const schemaOnlyFloor = 6

func runDemo(db *chronicledb.DB) {
	fmt.Println("=== chronicle demo ===")

	fmt.Println("\nDefining schema...")
	_, err := db.Transact(tx.New(
		tx.Op(tx.TempEntity("person/name"),
			tx.Attr("db/attr/ident", "person/name"),
			tx.Attr("db/attr/type", uint64(fact.KindStr)),
			tx.Attr("db/attr/cardinality", uint64(0)),
		),
		tx.Op(tx.TempEntity("person/age"),
			tx.Attr("db/attr/ident", "person/age"),
			tx.Attr("db/attr/type", uint64(fact.KindI64)),
			tx.Attr("db/attr/cardinality", uint64(0)),
		),
		tx.Op(tx.TempEntity("person/friend"),
			tx.Attr("db/attr/ident", "person/friend"),
			tx.Attr("db/attr/type", uint64(fact.KindRef)),
			tx.Attr("db/attr/cardinality", uint64(1)),
		),
	))
	if err != nil {
		log.Fatalf("schema definition failed: %v", err)
	}

	fmt.Println("Adding people...")
	result, err := db.Transact(tx.New(
		tx.Op(tx.TempEntity("alice"), tx.Attr("person/name", "Alice"), tx.Attr("person/age", int64(30))),
		tx.Op(tx.TempEntity("bob"), tx.Attr("person/name", "Bob"), tx.Attr("person/age", int64(25))),
		tx.Op(tx.TempEntity("charlie"), tx.Attr("person/name", "Charlie"), tx.Attr("person/age", int64(35))),
	))
	if err != nil {
		log.Fatalf("failed to add people: %v", err)
	}

	_, err = db.Transact(tx.New(
		tx.Op(tx.ExistingEntity(result.TempIDs["alice"]), tx.Attr("person/friend", fact.RefVal(result.TempIDs["bob"]))),
	))
	if err != nil {
		log.Fatalf("failed to add friendship: %v", err)
	}

	fmt.Println("\n=== Running queries ===")

	runQuery(db, "all people and ages", query.New().
		WithFind(query.FindVar("name")).WithFind(query.FindVar("age")).
		Where(query.NewClause().WithEntity(query.Var[uint64]("p")).WithAttribute(query.Const(query.AttrName("person/name"))).WithValue(query.Var[fact.Value]("name"))).
		Where(query.NewClause().WithEntity(query.Var[uint64]("p")).WithAttribute(query.Const(query.AttrName("person/age"))).WithValue(query.Var[fact.Value]("age"))))

	runQuery(db, "people over 28", query.New().
		WithFind(query.FindVar("name")).
		Where(query.NewClause().WithEntity(query.Var[uint64]("p")).WithAttribute(query.Const(query.AttrName("person/name"))).WithValue(query.Var[fact.Value]("name"))).
		Where(query.NewClause().WithEntity(query.Var[uint64]("p")).WithAttribute(query.Const(query.AttrName("person/age"))).WithValue(query.Var[fact.Value]("age"))).
		ValuePred("age", func(v fact.Value) bool { return v.I64 > 28 }))

	runQuery(db, "Alice's friends", query.New().
		WithFind(query.FindVar("friend-name")).
		Where(query.NewClause().WithEntity(query.Var[uint64]("alice")).WithAttribute(query.Const(query.AttrName("person/name"))).WithValue(query.Const(fact.Str("Alice")))).
		Where(query.NewClause().WithEntity(query.Var[uint64]("alice")).WithAttribute(query.Const(query.AttrName("person/friend"))).WithValue(query.Var[fact.Value]("friend"))).
		Where(query.NewClause().WithEntity(query.Var[uint64]("friend")).WithAttribute(query.Const(query.AttrName("person/name"))).WithValue(query.Var[fact.Value]("friend-name"))))

	runQuery(db, "count of people", query.New().
		WithFind(query.FindCount()).
		Where(query.NewClause().WithEntity(query.Var[uint64]("p")).WithAttribute(query.Const(query.AttrName("person/name"))).WithValue(query.Var[fact.Value]("name"))))
}

func runQuery(db *chronicledb.DB, label string, q query.Query) {
	color.Cyan("\n%s", label)

	rows, err := db.Query(q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query error: %v\n", err)
		return
	}
	defer rows.Close()

	columns := make([]string, len(q.Find))
	for i, f := range q.Find {
		if f.IsVariable() {
			columns[i] = f.Variable()
		} else {
			columns[i] = f.Fn().String()
		}
	}

	var out [][]fact.Value
	for rows.Next() {
		out = append(out, rows.Row())
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "query error: %v\n", err)
		return
	}

	fmt.Println(chronicledb.FormatTable(columns, out))
}
