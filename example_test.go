package boardgen_test

import (
	"context"
	"fmt"

	"github.com/aretw0/boardgen"
	"github.com/aretw0/boardgen/pkg/domain"
)

func ExampleBoard_Generate() {
	ctx := context.Background()

	doc, _ := domain.NewDocument(2, 3, 100)
	board, _ := boardgen.New(doc, boardgen.WithTopic("Rivers"))

	gen, _ := board.Generate(ctx, domain.BoardScope())
	if err := gen.Wait(ctx); err != nil {
		fmt.Println("failed:", err)
		return
	}

	fmt.Println(board.Status().State)
	fmt.Println(board.Document().Sections[1].Title)
	fmt.Println(board.Document().Sections[1].Cells[2].PointValue)
	// Output:
	// complete
	// Rivers 2
	// 300
}

func ExampleBoard_Rescale() {
	ctx := context.Background()

	doc, _ := domain.NewDocument(1, 2, 100)
	board, _ := boardgen.New(doc)

	_ = board.Rescale(ctx, 50)
	for _, c := range board.Document().Sections[0].Cells {
		fmt.Println(c.PointValue)
	}
	// Output:
	// 50
	// 100
}
