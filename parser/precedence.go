package parser

import "github.com/deepnoodle-ai/qmlc/internal/token"

// Precedence order for operators
const (
	_ int = iota
	LOWEST
	ASSIGN      // =
	TERNARY     // ? :
	OR          // ||
	AND         // &&
	BITOR       // |
	BITAND      // &
	EQUALS      // == != === !==
	LESSGREATER // > or <
	SUM         // + or -
	PRODUCT     // * / %
	PREFIX      // -X or !X
	CALL        // fn(X)
	INDEX       // a[b], a.b
)

// Precedences for each token type
var precedences = map[token.Type]int{
	token.ASSIGN:    ASSIGN,
	token.QUESTION:  TERNARY,
	token.OR:        OR,
	token.AND:       AND,
	token.BITOR:     BITOR,
	token.BITAND:    BITAND,
	token.EQ:        EQUALS,
	token.NOT_EQ:    EQUALS,
	token.STRICT_EQ: EQUALS,
	token.STRICT_NE: EQUALS,
	token.LT:        LESSGREATER,
	token.LT_EQUALS: LESSGREATER,
	token.GT:        LESSGREATER,
	token.GT_EQUALS: LESSGREATER,
	token.PLUS:      SUM,
	token.MINUS:     SUM,
	token.ASTERISK:  PRODUCT,
	token.SLASH:     PRODUCT,
	token.MOD:       PRODUCT,
	token.LPAREN:    CALL,
	token.PERIOD:    INDEX,
	token.LBRACKET:  INDEX,
}
