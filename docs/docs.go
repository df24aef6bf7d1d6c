// Package docs registra a especificação Swagger da API gojoyas.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/ping": {
            "get": {"summary": "Health check", "produces": ["text/plain"], "responses": {"200": {"description": "pong"}}}
        },
        "/register": {
            "post": {"tags": ["usuarios"], "summary": "Registra um comprador", "responses": {"201": {"description": "Criado"}, "400": {"description": "Validação"}, "409": {"description": "Email já cadastrado"}}}
        },
        "/login": {
            "post": {"tags": ["usuarios"], "summary": "Autentica e devolve o JWT", "responses": {"200": {"description": "OK"}, "401": {"description": "Credenciais inválidas"}}}
        },
        "/me": {
            "get": {"tags": ["usuarios"], "summary": "Usuário autenticado", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/products": {
            "get": {"tags": ["produtos"], "summary": "Lista o catálogo", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["produtos"], "summary": "Cria um produto", "security": [{"ApiKeyAuth": []}], "responses": {"201": {"description": "Criado"}}}
        },
        "/products/{id}": {
            "get": {"tags": ["produtos"], "summary": "Busca um produto", "responses": {"200": {"description": "OK"}, "404": {"description": "Não encontrado"}}}
        },
        "/warehouses": {
            "get": {"tags": ["armazens"], "summary": "Lista armazéns com itens", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["armazens"], "summary": "Cria um armazém", "security": [{"ApiKeyAuth": []}], "responses": {"201": {"description": "Criado"}, "400": {"description": "Validação"}}}
        },
        "/warehouses/{id}": {
            "get": {"tags": ["armazens"], "summary": "Busca um armazém", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Não encontrado"}}},
            "put": {"tags": ["armazens"], "summary": "Atualiza um armazém (controle de versão)", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}, "409": {"description": "Versão desatualizada"}}},
            "delete": {"tags": ["armazens"], "summary": "Remove um armazém", "security": [{"ApiKeyAuth": []}], "responses": {"204": {"description": "Removido"}}}
        },
        "/warehouses/{id}/occupancy": {
            "get": {"tags": ["armazens"], "summary": "Ocupação e contagem por status", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/warehouses/{id}/items": {
            "post": {"tags": ["armazens"], "summary": "Adiciona um item", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/warehouses/{id}/items/{index}": {
            "patch": {"tags": ["armazens"], "summary": "Altera um campo do item", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Posição inexistente"}}},
            "delete": {"tags": ["armazens"], "summary": "Remove o item da posição", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/warehouses/{id}/items/{index}/adjust": {
            "post": {"tags": ["armazens"], "summary": "Ajusta a quantidade do item por delta", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Delta zero ou estoque insuficiente"}}}
        },
        "/expenses": {
            "get": {"tags": ["despesas"], "summary": "Lista despesas", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["despesas"], "summary": "Registra despesa", "security": [{"ApiKeyAuth": []}], "responses": {"201": {"description": "Criado"}}}
        },
        "/expenses/{id}": {
            "get": {"tags": ["despesas"], "summary": "Busca despesa", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["despesas"], "summary": "Atualiza despesa", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["despesas"], "summary": "Remove despesa", "security": [{"ApiKeyAuth": []}], "responses": {"204": {"description": "Removido"}}}
        },
        "/discounts": {
            "get": {"tags": ["descontos"], "summary": "Lista códigos de desconto", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["descontos"], "summary": "Cria código de desconto", "security": [{"ApiKeyAuth": []}], "responses": {"201": {"description": "Criado"}}}
        },
        "/discounts/active": {
            "get": {"tags": ["descontos"], "summary": "Regras globais vigentes", "responses": {"200": {"description": "OK"}}}
        },
        "/discounts/{id}": {
            "get": {"tags": ["descontos"], "summary": "Busca código de desconto", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["descontos"], "summary": "Atualiza código de desconto", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["descontos"], "summary": "Remove código de desconto", "security": [{"ApiKeyAuth": []}], "responses": {"204": {"description": "Removido"}}}
        },
        "/cart/quote": {
            "post": {"tags": ["carrinho"], "summary": "Calcula subtotal e descontos do carrinho", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/schemas/{entity}": {
            "get": {"tags": ["schemas"], "summary": "JSON Schema dos payloads", "responses": {"200": {"description": "OK"}, "404": {"description": "Entidade desconhecida"}}}
        }
    }
}`

// SwaggerInfo guarda as informações exportadas da especificação.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "gojoyas API",
	Description:      "Razão de armazéns, descontos e despesas do back-office da joalheria.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
