package models

const (
	MsgCreated         = "Created successfully."
	MsgSuccessful      = "Successfully loaded"
	MsgLoginSuccess    = "Login successful"
	MsgLogout          = "Account has been logged out successfully"
	MsgUpdated         = "Updated successfully."
	MsgDeleted         = "Deleted successfully."
	MsgAlreadyExist    = "Already Exist"
	MsgLoginFailed     = "Login failed"
	MsgNotAuthorized   = "Not authorized."
	MsgNotFound        = "Data not found."
	MsgInvalidData     = "Invalid data"
	MsgBadRequest      = "Bad Request."
	MsgUnableToUpdate  = "Unable to update"
	MsgUnknownError    = "Something went wrong. Please try again."
	MsgReferenceExists = "Reference with same source and key already exist"
)
