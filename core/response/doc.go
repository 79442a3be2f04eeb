// Package response builds handler.Response values and renders errors.
//
//	func getItem(ctx handler.Context) handler.Response {
//		return response.JSON(item)
//	}
//
//	func page(ctx handler.Context) handler.Response {
//		return response.Templ(views.Page(title))
//	}
//
// Value chooses a response for any handler result, which lets mapped handlers
// return a plain value (or the map produced by a response converter):
//
//	resp := response.Value(result) // JSON, text, templ or 204
//
// # Errors
//
// AsHTTPError converts errors into HTTPError. A *mapper.ValidationError becomes
// 422 Unprocessable Entity with the failing location and every field error:
//
//	{
//	  "code": "unprocessable_entity",
//	  "message": "request data validation failed",
//	  "details": {
//	    "location": "request-body",
//	    "errors": [{"path": ["name"], "message": "Field required", "kind": "missing", "input": {}}]
//	  }
//	}
//
// ErrorHandler and JSONErrorHandler render errors for context-aware handlers;
// WriteJSONError does the same for plain net/http handlers.
package response
