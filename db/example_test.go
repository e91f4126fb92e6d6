package db

import "fmt"

func ExampleSession_Begin() {
	engine, err := NewBuilder().
		WithInitialData(map[string][]byte{"city": []byte("Lausanne")}).
		Build()
	if err != nil {
		panic("failed to build the engine: " + err.Error())
	}

	session := engine.NewSession()

	session.Begin()

	err = session.Put([]byte("city"), []byte("Geneva"))
	if err != nil {
		panic("failed to write: " + err.Error())
	}

	session.Begin()

	err = session.Delete([]byte("city"))
	if err != nil {
		panic("failed to delete: " + err.Error())
	}

	_, found := session.Get([]byte("city"))
	fmt.Println(found)

	err = session.Rollback()
	if err != nil {
		panic("failed to roll back: " + err.Error())
	}

	value, _ := session.Get([]byte("city"))
	fmt.Println(string(value))

	err = session.Commit()
	if err != nil {
		panic("failed to commit: " + err.Error())
	}

	value, _ = engine.Get([]byte("city"))
	fmt.Println(string(value))

	// Output: false
	// Geneva
	// Geneva
}

func ExampleSession_Exec() {
	engine, err := NewBuilder().Build()
	if err != nil {
		panic("failed to build the engine: " + err.Error())
	}

	session := engine.NewSession()

	err = session.Exec(func(tx Txn) error {
		return tx.Put([]byte("ping"), []byte("pong"))
	})
	if err != nil {
		panic("transaction failed: " + err.Error())
	}

	value, _ := engine.Get([]byte("ping"))
	fmt.Println(string(value))

	// Output: pong
}
