// Package gen wraps go/ast and go/printer with the small set of builders
// the declaration and reader emitters need: struct/interface literals,
// field lists parsed from "name type" strings, and a fluent function
// builder whose body is itself Go source (so template-driven state
// machines stay readable instead of being built node by node).
package gen

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/printer"
	"go/token"
	"io"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"
)

// TypeDecl generates a type declaration with the given name.
func TypeDecl(name *ast.Ident, typ ast.Expr) *ast.GenDecl {
	return &ast.GenDecl{
		Tok: token.TYPE,
		Specs: []ast.Spec{
			&ast.TypeSpec{
				Name: name,
				Type: typ,
			},
		},
	}
}

// Sanitize rewrites a name reserved as a Go keyword so it can be used as
// an identifier.
func Sanitize(name string) string {
	switch name {
	case "break", "default", "func", "interface", "select",
		"case", "defer", "go", "map", "struct",
		"chan", "else", "goto", "package", "switch",
		"const", "fallthrough", "if", "range", "type",
		"continue", "for", "import", "return", "var":
		return name + "_"
	}
	return name
}

// ToString converts the expression to a Go source string.
func ToString(expr ast.Expr) (string, error) {
	var buf bytes.Buffer
	err := format.Node(&buf, token.NewFileSet(), expr)
	return buf.String(), err
}

// Struct creates a struct{} expression from a series of name/type/tag
// triples. name must be *ast.Ident or nil, typ must be ast.Expr, tag must
// be *ast.BasicLit or nil.
func Struct(args ...ast.Expr) *ast.StructType {
	fields := new(ast.FieldList)
	if len(args)%3 != 0 {
		panic("gen.Struct: args must be a multiple of 3, got " + strconv.Itoa(len(args)))
	}
	for i := 0; i < len(args); i += 3 {
		var field ast.Field
		name, typ, tag := args[i], args[i+1], args[i+2]
		if name != nil {
			field.Names = []*ast.Ident{name.(*ast.Ident)}
		}
		if typ != nil {
			field.Type = typ
		}
		if tag != nil {
			field.Tag = tag.(*ast.BasicLit)
		}
		fields.List = append(fields.List, &field)
	}
	return &ast.StructType{Fields: fields}
}

// Interface creates an interface type with the given method set, each
// given as a "name(args) results" string understood by go/parser. A
// marker interface (one with no methods at all) is built by passing no
// methods; a marker method used to seal a sum type is built by passing a
// single zero-arg, zero-result private method name.
func Interface(methods ...string) (*ast.InterfaceType, error) {
	fields := &ast.FieldList{List: []*ast.Field{}}
	for _, m := range methods {
		expr, err := parser.ParseExpr("interface{ " + m + " }")
		if err != nil {
			return nil, fmt.Errorf("could not parse interface method %q: %v", m, err)
		}
		it, ok := expr.(*ast.InterfaceType)
		if !ok || len(it.Methods.List) != 1 {
			return nil, fmt.Errorf("could not parse interface method %q", m)
		}
		fields.List = append(fields.List, it.Methods.List[0])
	}
	return &ast.InterfaceType{Methods: fields}, nil
}

// FieldList generates a field list from strings in the form "[name]
// expr".
func FieldList(fields ...string) (*ast.FieldList, error) {
	result := &ast.FieldList{List: []*ast.Field{}}
	for _, s := range fields {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 0 {
			return nil, fmt.Errorf("empty field list item %q", s)
		}
		var names []*ast.Ident
		typeExpr, err := parser.ParseExpr(parts[len(parts)-1])
		if err != nil {
			return nil, fmt.Errorf("could not parse type in %q: %v", s, err)
		}
		if len(parts) > 1 {
			names = []*ast.Ident{ast.NewIdent(parts[0])}
		}
		result.List = append(result.List, &ast.Field{
			Names: names,
			Type:  typeExpr,
		})
	}
	return result, nil
}

// TypeParams generates the bracketed type-parameter list of a generic
// declaration ("[T comparable]") from "name constraint" strings.
func TypeParams(params ...string) (*ast.FieldList, error) {
	if len(params) == 0 {
		return nil, nil
	}
	return FieldList(params...)
}

// String generates a literal string. If the string contains a double
// quote, backticks are used for quoting instead.
func String(s string) *ast.BasicLit {
	if strings.Contains(s, "\"") && !strings.Contains(s, "`") {
		return &ast.BasicLit{Kind: token.STRING, Value: "`" + s + "`"}
	}
	return &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(s)}
}

// Public turns a string into a public (uppercase) identifier.
func Public(name string) *ast.Ident {
	return ast.NewIdent(strings.Title(name))
}

func constDecl(kind token.Token, args ...string) *ast.GenDecl {
	decl := ast.GenDecl{Tok: token.CONST}

	if len(args)%3 != 0 {
		panic("gen: const args must be a multiple of 3")
	}
	for i := 0; i < len(args); i += 3 {
		name, typ, val := args[i], args[i+1], args[i+2]
		lit := &ast.BasicLit{Kind: kind}
		if kind == token.STRING {
			lit.Value = strconv.Quote(val)
		} else {
			lit.Value = val
		}
		a := &ast.ValueSpec{
			Names:  []*ast.Ident{ast.NewIdent(name)},
			Values: []ast.Expr{lit},
		}
		if typ != "" {
			a.Type = ast.NewIdent(typ)
		}
		decl.Specs = append(decl.Specs, a)
	}

	if len(decl.Specs) > 1 {
		decl.Lparen = 1
	}

	return &decl
}

// SimpleType creates an identifier suitable for use as a type expression.
func SimpleType(name string) ast.Expr {
	return ast.NewIdent(name)
}

// ConstInt creates a series of numeric const declarations from the
// name/type/value triples in args.
func ConstInt(args ...string) *ast.GenDecl { return constDecl(token.INT, args...) }

// ConstString creates a series of string const declarations from the
// name/type/value triples in args.
func ConstString(args ...string) *ast.GenDecl { return constDecl(token.STRING, args...) }

// PackageDoc inserts package-level comments into a file, preceding the
// "package" statement.
func PackageDoc(file *ast.File, comments ...string) *ast.File {
	if len(comments) == 0 {
		return file
	}
	file.Doc = CommentGroup(comments...)
	return file
}

// CommentGroup creates a comment group from strings.
func CommentGroup(comments ...string) *ast.CommentGroup {
	var group ast.CommentGroup
	for _, v := range comments {
		line := bufio.NewScanner(strings.NewReader(v))
		for line.Scan() {
			group.List = append(group.List, &ast.Comment{
				Text: "// " + strings.TrimSpace(line.Text()),
			})
		}
	}
	return &group
}

// Function is a fluent builder for a top-level function or method
// declaration whose body is supplied as a block of Go source text (via
// Body or BodyTmpl) rather than built node-by-node.
type Function struct {
	name, receiver, godoc string
	typeParams            []string
	args, returns         []string
	err                   error
	body                  string
}

// Name returns the name of the function.
func (fn *Function) Name() string { return fn.name }

// Func begins a new function builder named name.
func Func(name string) *Function {
	return &Function{name: name}
}

// Decl generates Go source for a Func. An error is returned if the body
// or parameter/return lists cannot be parsed.
func (fn *Function) Decl() (*ast.FuncDecl, error) {
	var err error
	var comments *ast.CommentGroup

	if fn.err != nil {
		return nil, fn.err
	}
	if fn.name == "" {
		return nil, errors.New("gen: function name unset")
	}
	if len(fn.body) == 0 {
		return nil, fmt.Errorf("gen: function body for %s unset", fn.name)
	}

	if fn.godoc != "" {
		comments = &ast.CommentGroup{List: []*ast.Comment{}}
		for _, line := range strings.Split(fn.godoc, "\n") {
			comments.List = append(comments.List, &ast.Comment{
				Text: "// " + line + "\n",
			})
		}
	}
	fl := func(args ...string) (list *ast.FieldList) {
		if len(args) == 0 || len(args[0]) == 0 || err != nil {
			return nil
		}
		list, err = FieldList(args...)
		return list
	}
	args := fl(fn.args...)
	returns := fl(fn.returns...)
	receiver := fl(fn.receiver)
	if err != nil {
		return nil, err
	}
	var typeParams *ast.FieldList
	if len(fn.typeParams) > 0 {
		typeParams, err = TypeParams(fn.typeParams...)
		if err != nil {
			return nil, err
		}
	}
	body, err := parseBlock(fn.body)
	if err != nil {
		return nil, fmt.Errorf("gen: could not parse function body of %s: %v in\n%s", fn.name, err, fn.body)
	}
	decl := &ast.FuncDecl{
		Doc:  comments,
		Recv: receiver,
		Name: ast.NewIdent(fn.name),
		Type: &ast.FuncType{
			Params:  args,
			Results: returns,
		},
		Body: body,
	}
	if typeParams != nil {
		decl.Type.TypeParams = typeParams
	}
	return decl, nil
}

// Body sets the body of a function. The body should not include
// enclosing braces.
func (fn *Function) Body(format string, v ...interface{}) *Function {
	fn.body = fmt.Sprintf(format, v...)
	return fn
}

// BodyTmpl builds the function body from a text/template, with
// "title"/"split"/"join"/"sanitize" helpers bound.
func (fn *Function) BodyTmpl(tmpl string, dot interface{}) *Function {
	var buf bytes.Buffer
	t, err := template.New(fn.Name()).Funcs(template.FuncMap{
		"title":    strings.Title,
		"split":    strings.Split,
		"join":     strings.Join,
		"sanitize": Sanitize,
	}).Parse(tmpl)
	if err != nil {
		fn.err = err
	} else if err := t.Execute(&buf, dot); err != nil {
		fn.err = err
	} else {
		fn.body = buf.String()
	}
	return fn
}

// Returns sets the return values of a function.
func (fn *Function) Returns(values ...string) *Function {
	fn.returns = values
	return fn
}

// Comment sets the godoc comment for the function.
func (fn *Function) Comment(s string) *Function {
	fn.godoc = s
	return fn
}

// Args sets the arguments that a function takes.
func (fn *Function) Args(args ...string) *Function {
	fn.args = args
	return fn
}

// Receiver turns the function into a method operating on the specified
// type.
func (fn *Function) Receiver(receiver string) *Function {
	fn.receiver = receiver
	return fn
}

// TypeParams sets the generic type parameter list of the function, each
// entry a "name constraint" string (e.g. "T comparable").
func (fn *Function) TypeParams(params ...string) *Function {
	fn.typeParams = params
	return fn
}

// Declarations parses a list of Go source code blocks and converts them
// into *ast.Decl values. If a parsing error occurs, it is returned
// immediately and no further parsing takes place.
func Declarations(blocks ...string) ([]ast.Decl, error) {
	var buf bytes.Buffer
	decls := make([]ast.Decl, 0, len(blocks))
	for _, block := range blocks {
		fmt.Fprintf(&buf, "package tmp\n%s\n", block)
		file, err := parser.ParseFile(
			token.NewFileSet(), "",
			buf.Bytes(), parser.ParseComments)
		if err != nil {
			return decls, err
		}
		decls = append(decls, file.Decls...)
		buf.Reset()
	}
	return decls, nil
}

func parseBlock(s string) (*ast.BlockStmt, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "package tmp\nfunc _block() {\n%s\n}", s)
	file, err := parser.ParseFile(token.NewFileSet(), "", buf.Bytes(), 0)
	if err != nil {
		return nil, err
	}
	for _, decl := range file.Decls {
		if decl, ok := decl.(*ast.FuncDecl); ok {
			return decl.Body, nil
		}
	}
	return nil, fmt.Errorf("gen: no function found in %q", buf.Bytes())
}

// ExprString converts an ast.Expr to the Go source it represents.
func ExprString(expr ast.Expr) string {
	var buf bytes.Buffer
	fs := token.NewFileSet()
	printer.Fprint(&buf, fs, expr)
	return buf.String()
}

// TagKey gets the struct tag item with the given key.
func TagKey(field *ast.Field, key string) string {
	if field.Tag == nil {
		return ""
	}
	return reflect.StructTag(strings.Trim(field.Tag.Value, "`")).Get(key)
}

// FormattedSource converts an abstract syntax tree to formatted,
// import-cleaned Go source code.
func FormattedSource(file *ast.File) ([]byte, error) {
	var buf bytes.Buffer

	fileset := token.NewFileSet()

	// Nodes built programmatically all carry position 0, which makes
	// go/printer place the package comment between the "package"
	// keyword and the package name. Emit it ourselves instead.
	if file.Doc != nil {
		for _, v := range file.Doc.List {
			io.WriteString(&buf, v.Text)
			io.WriteString(&buf, "\n")
		}
		file.Doc = nil
	}
	if err := format.Node(&buf, fileset, file); err != nil {
		return nil, err
	}
	out, err := imports.Process("", buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("%v in %s", err, buf.String())
	}
	return out, nil
}
